// Package server provides HTTP server management and lifecycle handling for
// the quotation API. It includes server setup, middleware configuration,
// route management, and graceful shutdown capabilities with proper error
// handling and logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/biocule/quotation-api/config"
	"github.com/biocule/quotation-api/interfaces"
	"github.com/biocule/quotation-api/logging"
	"github.com/biocule/quotation-api/metrics"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		config:  cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware) // Put BEFORE RealIPMiddleware to see original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Catalog browsing
	s.router.Get("/categories", s.handler.ServeCategories)
	s.router.Get("/categories/{category}/options", s.handler.ServeCategoryOptions)
	s.router.Get("/categories/{category}/guidelines", s.handler.ServeCategoryGuidelines)
	s.router.Get("/categories/{category}/guidelines/{code}", s.handler.ServeGuidelineDetail)
	s.router.Get("/guidelines/search/{term}", s.handler.SearchGuidelines)
	s.router.Get("/resolve", s.handler.ResolveGuidelines)

	// Selection sessions
	s.router.Post("/sessions", s.handler.CreateSession)
	s.router.Get("/sessions/{sessionId}", s.handler.GetSession)
	s.router.Patch("/sessions/{sessionId}", s.handler.UpdateSelection)
	s.router.Post("/sessions/{sessionId}/guidelines/toggle", s.handler.ToggleGuideline)
	s.router.Post("/sessions/{sessionId}/guidelines/select-all", s.handler.SelectAllGuidelines)
	s.router.Post("/sessions/{sessionId}/clear", s.handler.ClearSelection)
	s.router.Post("/sessions/{sessionId}/commit", s.handler.CommitSelection)

	// Cart
	s.router.Get("/sessions/{sessionId}/cart", s.handler.ServeCart)
	s.router.Get("/sessions/{sessionId}/cart/aggregate", s.handler.ServeCheckout)
	s.router.Delete("/sessions/{sessionId}/cart/items/{itemId}", s.handler.RemoveCartItem)
	s.router.Post("/sessions/{sessionId}/cart/items/{itemId}/edit", s.handler.EditCartItem)
	s.router.Post("/sessions/{sessionId}/cart/items/{itemId}/draft", s.handler.OpenCartDraft)
	s.router.Post("/sessions/{sessionId}/cart/items/{itemId}/draft/confirm", s.handler.ConfirmCartDraft)
	s.router.Delete("/sessions/{sessionId}/cart/items/{itemId}/draft", s.handler.DiscardCartDraft)
	s.router.Delete("/sessions/{sessionId}/cart/items/{itemId}/draft/guidelines/{code}", s.handler.RemoveDraftGuideline)
	s.router.Delete("/sessions/{sessionId}/cart/items/{itemId}/guidelines/{code}", s.handler.RemoveItemGuideline)

	// Quotation storage
	s.router.Post("/otp/send", s.handler.SendOTP)
	s.router.Post("/otp/verify", s.handler.VerifyOTP)
	s.router.Post("/quotations/store", s.handler.StoreQuotation)
	s.router.Get("/quotations/{sessionId}", s.handler.ListQuotations)

	// Operational
	s.router.Get("/health", s.handler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	// Start profiling server if in development mode
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	// Wait a bit for any ongoing requests to complete
	logging.Info("Waiting for ongoing requests to complete...")
	time.Sleep(2 * time.Second)

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
