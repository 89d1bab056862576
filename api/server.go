// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs cost logic.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fencecost/adapters/storage"
	"fencecost/api/envelope"
	"fencecost/core/cost"
	"fencecost/core/output"
	"fencecost/core/types"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Options configures a Server
type Options struct {
	Version string

	// Engine prices requests; required
	Engine *cost.Engine

	// Store keeps saved quotes; nil disables /quotes and save
	Store storage.Store

	// Formats renders documents; defaults to output.DefaultRegistry
	Formats *output.Registry

	Currency          types.Currency
	DefaultPostsPerFt decimal.Decimal

	// RequestTimeout bounds each request; zero disables the timeout
	RequestTimeout time.Duration

	Logger *zap.Logger
	Audit  envelope.AuditLogger
}

// Server is the API server
type Server struct {
	router     chi.Router
	engine     *cost.Engine
	store      storage.Store
	formats    *output.Registry
	normalizer *envelope.Normalizer
	audit      envelope.AuditLogger
	logger     *zap.Logger
	currency   types.Currency
	version    string
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Formats == nil {
		opts.Formats = output.DefaultRegistry()
	}
	if opts.Audit == nil {
		opts.Audit = &envelope.ZapAuditLogger{Logger: opts.Logger.Named("audit")}
	}
	if opts.Currency == "" {
		opts.Currency = types.CurrencyUSD
	}

	s := &Server{
		engine:     opts.Engine,
		store:      opts.Store,
		formats:    opts.Formats,
		normalizer: envelope.NewNormalizer(opts.DefaultPostsPerFt),
		audit:      opts.Audit,
		logger:     opts.Logger,
		currency:   opts.Currency,
		version:    opts.Version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	s.router = r
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Pricing endpoints
	s.router.Post("/estimate", s.handleEstimate)
	s.router.Post("/estimate_fence", s.handleFenceEstimate)
	s.router.Post("/po", s.handlePurchaseOrder)

	// Saved quotes
	s.router.Route("/quotes", func(r chi.Router) {
		r.Get("/", s.handleListQuotes)
		r.Get("/{id}", s.handleGetQuote)
		r.Delete("/{id}", s.handleDeleteQuote)
	})

	// Supporting endpoints
	s.router.Get("/catalog", s.handleCatalog)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("version", s.version))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	}
}
