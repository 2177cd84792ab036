package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/simple-gallery/internal/api"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	"github.com/tendant/simple-gallery/pkg/simplegallery/config"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
)

func main() {
	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	if serverConfig.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := serverConfig.BuildRepository(ctx)
	if err != nil {
		slog.Error("Failed to build repository", "err", err)
		os.Exit(1)
	}

	svc, err := serverConfig.BuildServiceWithRepository(repo)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	manager, err := serverConfig.BuildSnapshotManager()
	if err != nil {
		slog.Error("Failed to build snapshot store", "err", err)
		os.Exit(1)
	}

	if serverConfig.BootstrapAdmin {
		admin, err := svc.EnsureBootstrapAdmin(ctx, simplegallery.BootstrapAdminRequest{
			Username: serverConfig.AdminUsername,
			Secret:   serverConfig.AdminSecret,
		})
		if err != nil {
			slog.Error("Failed to bootstrap admin account", "err", err)
			os.Exit(1)
		}
		slog.Info("Admin account ready", "username", admin.Username, "id", admin.ID)
	}

	tokenAuth := jwtauth.New("HS256", []byte(serverConfig.JWTSecret), nil)

	server := NewHTTPServer(svc, manager, tokenAuth, serverConfig)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: server.Routes(),
	}

	go func() {
		slog.Info("Simple Gallery Server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"snapshots", serverConfig.Snapshot.Type)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

// HTTPServer wraps the gallery service for HTTP access
type HTTPServer struct {
	service   simplegallery.Service
	manager   *snapshot.Manager
	tokenAuth *jwtauth.JWTAuth
	config    *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service simplegallery.Service, manager *snapshot.Manager, tokenAuth *jwtauth.JWTAuth, serverConfig *config.ServerConfig) *HTTPServer {
	return &HTTPServer{
		service:   service,
		manager:   manager,
		tokenAuth: tokenAuth,
		config:    serverConfig,
	}
}

// Routes sets up the HTTP routes
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if s.config.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", s.handleHealth)

	authHandler := api.NewAuthHandler(s.service, s.tokenAuth, s.config.TokenTTL)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Mount("/users", api.NewUserHandler(s.service).Routes())
			r.Mount("/galleries", api.NewGalleryHandler(s.service).Routes())
			r.Mount("/posts", api.NewPostHandler(s.service).Routes())
			r.Mount("/comments", api.NewCommentHandler(s.service).Routes())
			r.Mount("/settings", api.NewSettingsHandler(s.service).Routes())
			r.Mount("/snapshots", api.NewSnapshotHandler(s.service, s.manager).Routes())
		})
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status": "healthy", "environment": "%s", "database": "%s"}`,
		s.config.Environment, s.config.DatabaseType)
}
