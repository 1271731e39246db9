package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, deps Deps) *Server {
	handler := NewHandler(deps)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)
	router.Use(RecoverMiddleware)
	router.Use(TracingMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Defaulter list view
	router.Route("/defaulters", func(r chi.Router) {
		r.Get("/", handler.ListDefaulters)
		r.Get("/metrics", handler.DefaulterMetrics)
		r.Post("/export", handler.ExportDefaulters)
	})

	// Risk rule editor
	router.Route("/risk-config", func(r chi.Router) {
		r.Get("/", handler.GetRiskConfig)
		r.Put("/active", handler.SetActiveCategory)
		r.Get("/fields", handler.ListFields)
		r.Post("/conditions", handler.AddCondition)
		r.Patch("/conditions/{id}", handler.UpdateCondition)
		r.Delete("/conditions/{id}", handler.RemoveCondition)
		r.Post("/save", handler.SaveRiskConfig)
		r.Get("/saved", handler.GetSavedRiskConfig)
		r.Post("/preview", handler.PreviewRiskConfig)
	})

	router.Get("/notifications", handler.ListNotifications)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
