package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"

	apigraphql "github.com/minsukang/accounts/internal/api/graphql"
	"github.com/minsukang/accounts/internal/api/middleware"
	"github.com/minsukang/accounts/internal/auth"
	"github.com/minsukang/accounts/internal/domain/user"
	"github.com/minsukang/accounts/internal/events"
	"github.com/minsukang/accounts/internal/repository"
	"github.com/minsukang/accounts/pkg/config"
	"github.com/minsukang/accounts/pkg/logger"
	"github.com/minsukang/accounts/pkg/mongox"
)

// Server represents the HTTP server fronting the GraphQL API
type Server struct {
	httpServer  *http.Server
	logger      *logger.Logger
	mongoClient *mongox.Client
	bus         *events.Bus
	mux         *http.ServeMux
	cfg         *config.Config
}

// NewServer creates a new HTTP server. Collaborators arrive as explicit
// arguments; the server only assembles them.
func NewServer(cfg *config.Config, log *logger.Logger, mongoClient *mongox.Client, bus *events.Bus) (*Server, error) {
	apiLogger := log.WithComponent("api")
	mux := http.NewServeMux()

	userRepo := repository.New[user.User](mongoClient.DB(), user.Collection, log)
	userService := user.NewService(userRepo, bus, log)
	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	authMiddleware := middleware.NewAuthMiddleware(sessions, log)

	resolver := apigraphql.NewResolver(log, userService, sessions)
	schema, err := graphqlgo.ParseSchema(apigraphql.Schema, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		logger:      apiLogger,
		mongoClient: mongoClient,
		bus:         bus,
		mux:         mux,
		cfg:         cfg,
	}

	graphqlHandler := middleware.Chain(
		middleware.CaptureWriter(),
		authMiddleware.WithSession,
	)(&relay.Handler{Schema: schema})

	mux.HandleFunc(cfg.Server.HealthCheckPath, server.healthCheckHandler)
	mux.Handle("/graphql", graphqlHandler)

	middlewareChain := middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RateLimit(cfg.RateLimit, log),
		middleware.CORS(cfg.CORS),
		middleware.Logging(log),
	)
	server.httpServer.Handler = middlewareChain(mux)

	return server, nil
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr))

	if err := events.RunAuditLogger(ctx, s.bus, s.logger); err != nil {
		return fmt.Errorf("failed to start audit logger: %w", err)
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	if err := s.bus.Close(); err != nil {
		s.logger.Error("Event bus shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.httpServer.Addr
}

// healthCheckHandler reports store connectivity
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.mongoClient.HealthCheck(r.Context()); err != nil {
		s.logger.Error("Mongo health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy","checks":{"mongo":{"status":"down"}}}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","checks":{"mongo":{"status":"up"}}}`))
}
