// Package notary implements app.Runner for the notary process.
package notary

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/pkg/app/httpserver"
	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/notary"
	"github.com/chainsafe/identity-oracle/pkg/pgutil"
	"github.com/chainsafe/identity-oracle/pkg/vault"
)

// TODO: take these from config
const (
	defaultHTTPMiddlewareTimeout = 60 * time.Second
	defaultHTTPWriteTimeout      = 15 * time.Second
	defaultHTTPIdleTimeout       = 60 * time.Second
)

// Server holds configuration for the notary process.
type Server struct {
	cfg *config.NotaryConfig
}

// NewServer initializes a new notary Server.
func NewServer(cfg *config.NotaryConfig) *Server {
	return &Server{cfg: cfg}
}

// Run starts the finality service HTTP server.
// It blocks until an OS shutdown signal is received or a fatal server error occurs.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("nil config")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Name, cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	key, err := cfg.Key.KeyPair(cfg.Name)
	if err != nil {
		return fmt.Errorf("load notary key: %w", err)
	}
	logger.Info("Starting notary", zap.String("key", key.PublicKey.Hex()))

	store, closeStore, err := s.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := notary.NewLog(notary.NewMetrics(notary.NewService(key, store)), logger)
	router := s.newRouter(svc, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: defaultHTTPWriteTimeout,
		IdleTimeout:  defaultHTTPIdleTimeout,
	}
	return httpserver.ServeAndWait(ctx, logger, httpServer, cfg.Server.ShutdownTimeout)
}

// openStore connects the postgres vault when a database is configured and falls back to memory
func (s *Server) openStore(logger *zap.Logger) (vault.Store, func(), error) {
	if s.cfg.Database == nil {
		logger.Warn("No database configured, finalised transactions are kept in memory only")
		return vault.NewMemoryStore(), func() {}, nil
	}

	db, err := pgutil.ConnectDB(s.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect vault db: %w", err)
	}
	logger.Info("Vault database connection established",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return vault.NewPGStore(db), func() { _ = db.Close() }, nil
}

func (s *Server) newRouter(svc notary.Service, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultHTTPMiddlewareTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if !s.cfg.Metrics.Disabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
		logger.Info("Metrics enabled", zap.String("path", s.cfg.Metrics.Path))
	}

	notary.RegisterRoutes(r, svc, logger)
	return r
}
