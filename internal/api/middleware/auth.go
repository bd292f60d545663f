package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/minsukang/accounts/internal/auth"
	"github.com/minsukang/accounts/pkg/logger"
)

// AuthMiddleware verifies the session cookie and exposes the verified
// claims through the request context
type AuthMiddleware struct {
	sessions *auth.SessionManager
	logger   *logger.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions *auth.SessionManager, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   log.WithComponent("auth-middleware"),
	}
}

// WithSession attaches verified session claims to the request context
// when a valid Authentication cookie is present. Requests without a
// valid session proceed unauthenticated; operations that need an
// identity reject them individually.
func (m *AuthMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.sessions.Verify(cookie.Value)
		if err != nil {
			m.logger.Debug("Session cookie rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSessionClaims(r.Context(), claims)))
	})
}
