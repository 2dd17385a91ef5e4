package server

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/catalog"
	"github.com/bllackjack/walletdash/registry"
	"github.com/bllackjack/walletdash/transfer"
	"github.com/bllackjack/walletdash/wallet"
)

// Config holds the dashboard server settings.
type Config struct {
	Address        string
	AllowedOrigins []string
	RatePerMinute  int
	EnableMetrics  bool
}

// DefaultConfig returns settings suitable for local development with a
// browser front end on :3000.
func DefaultConfig() Config {
	return Config{
		Address:        "localhost:8080",
		AllowedOrigins: []string{"http://localhost:3000"},
		RatePerMinute:  300,
		EnableMetrics:  true,
	}
}

// Server serves the dashboard JSON API a browser front end binds to.
type Server struct {
	cfg Config
	log zerolog.Logger

	wallet     *wallet.Manager
	reg        *registry.Registry
	catalogSvc *catalog.Service
	balances   *balance.Aggregator
	dispatcher *transfer.Dispatcher

	httpServer *http.Server

	mu       sync.RWMutex
	catalogs map[uint64]catalog.Catalog
	handles  map[string]*transfer.Handle
	nextID   uint64
}

// New wires the server against the dashboard core.
func New(cfg Config, w *wallet.Manager, reg *registry.Registry, catalogSvc *catalog.Service, balances *balance.Aggregator, dispatcher *transfer.Dispatcher) *Server {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	s := &Server{
		cfg:        cfg,
		log:        zerolog.New(out).With().Timestamp().Str("component", "server").Logger(),
		wallet:     w,
		reg:        reg,
		catalogSvc: catalogSvc,
		balances:   balances,
		dispatcher: dispatcher,
		catalogs:   make(map[uint64]catalog.Catalog),
		handles:    make(map[string]*transfer.Handle),
	}

	mux := chi.NewMux()
	mux.Use(s.requestLogger)
	mux.Use(s.recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Timeout(60 * time.Second))

	if cfg.RatePerMinute > 0 {
		mux.Use(httprate.LimitByIP(cfg.RatePerMinute, time.Minute))
	}

	if cfg.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"walletdash"}`))
	})

	mux.Route("/api", func(r chi.Router) {
		r.Get("/account", s.handleAccount)
		r.Get("/chains", s.handleChains)
		r.Get("/balance", s.handleBalance)
		r.Get("/holdings", s.handleHoldings)
		r.Get("/tokens", s.handleTokens)
		r.Post("/transfers", s.handleSubmitTransfer)
		r.Get("/transfers/{id}", s.handleTransferStatus)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         int(2 * time.Hour / time.Second),
	}).Handler(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           corsHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start begins serving and blocks until the listener fails or the server is
// shut down.
func (s *Server) Start() error {
	s.log.Info().Str("address", s.cfg.Address).Msg("dashboard API starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener. Transfer
// confirmations in flight keep running; their handles stay queryable until
// the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("dashboard API shutting down")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs every request with zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.log.Error().
					Interface("panic", rvr).
					Str("path", r.URL.Path).
					Msg("recovered from panic")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
