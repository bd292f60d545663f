package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minsukang/accounts/internal/domain/shared"
	"github.com/minsukang/accounts/internal/domain/user"
)

// CookieName is the cookie the session token is carried in
const CookieName = "Authentication"

// Claims represents the session token payload. Field names match the
// stored document: the identifier travels as its 24-hex form under _id.
type Claims struct {
	UserID string `json:"_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies signed, time-limited session
// tokens. Sessions are stateless: validity is solely a function of
// signature and expiry. Logout does not revoke an issued token
// server-side, it only instructs the client to discard its copy.
type SessionManager struct {
	secretKey  []byte
	expiration time.Duration
}

// NewSessionManager creates a session manager with an explicit signing
// secret and expiration in seconds
func NewSessionManager(secret string, expirationSeconds int) *SessionManager {
	return &SessionManager{
		secretKey:  []byte(secret),
		expiration: time.Duration(expirationSeconds) * time.Second,
	}
}

// Login mints a signed session token for a verified identity and the
// cookie carrying it. Credential verification must happen before this
// is called; Login itself trusts the identity it is handed.
func (m *SessionManager) Login(u *user.User) (string, *http.Cookie, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiration)

	claims := Claims{
		UserID: u.ID.Hex(),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", nil, err
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  expiresAt,
	}

	return token, cookie, nil
}

// Logout returns a cookie that overwrites the session cookie with an
// empty, already-expired value, causing the client to drop it. No
// server-side state changes.
func (m *SessionManager) Logout() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now(),
	}
}

// Verify validates a session token against the embedded expiry and the
// signature, returning the identity it was issued for. Expiry and
// signature failures are distinct conditions so callers can tell a
// naturally expired session from a tampered token.
func (m *SessionManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.WrapDomainError(err, shared.ErrCodeTokenExpired, "session token expired")
		}
		return nil, shared.WrapDomainError(err, shared.ErrCodeTokenInvalidSignature, "session token invalid")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, shared.NewDomainError(shared.ErrCodeTokenInvalidSignature, "session token invalid")
	}

	return claims, nil
}
