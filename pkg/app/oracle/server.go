// Package oracle implements app.Runner for the oracle process.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/chainsafe/identity-oracle/pkg/app/httpserver"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/oracle"
	"github.com/chainsafe/identity-oracle/pkg/oracle/rpc"
	"github.com/chainsafe/identity-oracle/pkg/registry"
	"github.com/chainsafe/identity-oracle/pkg/token"
)

const (
	defaultHTTPMiddlewareTimeout = 60 * time.Second
	defaultHTTPWriteTimeout      = 30 * time.Second
	defaultHTTPIdleTimeout       = 60 * time.Second
)

// Server holds cfg to init the oracle node.
type Server struct {
	cfg *config.OracleConfig
}

// NewServer initializes a new oracle Server.
func NewServer(cfg *config.OracleConfig) *Server {
	return &Server{cfg: cfg}
}

// Run serves the oracle over HTTP, and over gRPC when enabled, until an OS shutdown
// signal is received or one of the servers fails.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("oracle config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Name, cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	key, err := cfg.Key.KeyPair(cfg.Name)
	if err != nil {
		return fmt.Errorf("load oracle key: %w", err)
	}
	logger.Info("Starting oracle",
		zap.String("key", key.PublicKey.Hex()),
		zap.String("http", cfg.Server.Addr()),
		zap.Bool("grpc", cfg.GRPC.Enabled),
	)

	reg, closeRegistry := s.openRegistry(logger)
	defer closeRegistry()

	svc := s.newService(key, reg, logger)
	router := s.setupRouter(svc, reg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		httpServer := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: defaultHTTPWriteTimeout,
			IdleTimeout:  defaultHTTPIdleTimeout,
		}
		return httpserver.ServeAndWait(gctx, logger, httpServer, cfg.Server.ShutdownTimeout)
	})
	if cfg.GRPC.Enabled {
		g.Go(func() error { return s.serveGRPC(gctx, svc, logger) })
	}
	return g.Wait()
}

// openRegistry builds the static registry from config, behind a redis cache when configured
func (s *Server) openRegistry(logger *zap.Logger) (registry.Registry, func()) {
	static := registry.NewStatic()
	for _, rc := range s.cfg.Registry {
		static.Put(registry.Record{
			Document: attestation.IdentityDocument{ID: rc.ID, Kind: attestation.IdentityKind(rc.Kind)},
			Subject:  rc.Subject,
			Valid:    !rc.Revoked,
		})
	}
	logger.Info("Identity registry loaded", zap.Int("records", len(s.cfg.Registry)))

	if s.cfg.Redis == nil {
		return static, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})
	logger.Info("Identity registry cache enabled",
		zap.String("addr", s.cfg.Redis.Addr),
		zap.Duration("ttl", s.cfg.Redis.TTL),
	)
	cache := registry.NewRedisCache(client, s.cfg.Redis.KeyPrefix, s.cfg.Redis.TTL)
	return registry.NewCached(static, cache, logger), func() { _ = client.Close() }
}

func (s *Server) newService(key *keys.KeyPair, reg registry.Registry, logger *zap.Logger) oracle.Service {
	secret := []byte(s.cfg.Token.Secret)
	source := token.NewSource(reg, token.NewIssuer(secret, s.cfg.Name, s.cfg.Token.TTL))

	var checker oracle.FactChecker = token.NewChecker(secret, s.cfg.Name)
	if s.cfg.Token.SkipVerify {
		logger.Warn("Token verification disabled, the oracle signs any fact it is a required signer of")
		checker = oracle.AcceptAll
	}

	return oracle.NewLog(oracle.NewMetrics(oracle.NewService(key, source, checker)), logger)
}

func (s *Server) setupRouter(svc oracle.Service, reg registry.Registry, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultHTTPMiddlewareTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if !s.cfg.Metrics.Disabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.Handler())
		logger.Info("Metrics enabled", zap.String("path", s.cfg.Metrics.Path))
	}

	oracle.RegisterRoutes(r, svc, logger)

	// The lookup answers for any document id without a token, so it is opt-in.
	if s.cfg.RegistryStatus {
		r.Handle(registry.StatusPath, registry.NewHandler(reg, logger))
		logger.Warn("Registry status endpoint enabled", zap.String("path", registry.StatusPath))
	}

	return r
}

func (s *Server) serveGRPC(ctx context.Context, svc oracle.Service, logger *zap.Logger) error {
	addr := s.cfg.GRPC.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	srv := grpc.NewServer()
	rpc.Register(srv, svc)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("address", addr))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gRPC server")
		srv.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server failed: %w", err)
		}
		return nil
	}
}
