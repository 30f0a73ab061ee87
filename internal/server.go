package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RoutesRegistry is a function that registers routes on a chi.Router
type RoutesRegistry func(r chi.Router)

// ServiceConfig holds what NewService needs to build a Service.
type ServiceConfig struct {
	Addr         string
	Logger       *slog.Logger
	Routes       RoutesRegistry
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORSAllowedOrigins enables CORS for the listed browser origins.
	// No CORS headers are sent when empty.
	CORSAllowedOrigins []string
}

// Service wraps an HTTP server with its router
type Service struct {
	Logger     *slog.Logger
	HTTPServer *http.Server
	Router     *chi.Mux
}

// NewService sets up the router, the common middleware and the HTTP server
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	// Initialize common middleware
	router.Use(middleware.RequestID)
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Register routes
	if cfg.Routes != nil {
		cfg.Routes(router)
	}

	// Apply default timeouts if not provided
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 15 * time.Second
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 60 * time.Second
	}

	return &Service{
		Logger: logger,
		Router: router,
		HTTPServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}
}

// ListenAndServeWrapper starts the http service
func (s *Service) ListenAndServeWrapper(service string) error {
	s.Logger.Info("starting http service", slog.String("service", service), slog.String("port", s.HTTPServer.Addr))
	return s.HTTPServer.ListenAndServe()
}
