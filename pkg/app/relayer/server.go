// Package relayer implements app.Runner for the relayer process.
package relayer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/lockmint-relayer/pkg/app"
	apphttp "github.com/chainsafe/lockmint-relayer/pkg/app/http"
	"github.com/chainsafe/lockmint-relayer/pkg/app/httpserver"
	"github.com/chainsafe/lockmint-relayer/pkg/auth"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
	"github.com/chainsafe/lockmint-relayer/pkg/notify"
	"github.com/chainsafe/lockmint-relayer/pkg/pgutil"
	"github.com/chainsafe/lockmint-relayer/pkg/relayer"
)

// Server holds configuration for the relayer process.
type Server struct {
	cfg    *config.Config
	memory bool
}

var _ app.Runner = (*Server)(nil)

// Option configures a Server
type Option func(*Server)

// WithMemoryStore keeps the queue and cursor in memory instead of PostgreSQL.
// Nothing survives a restart; intended for dry runs against test chains.
func WithMemoryStore() Option {
	return func(s *Server) { s.memory = true }
}

// NewServer initializes a new relayer Server.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	s := &Server{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the relayer engine, the notification sink and the operational
// HTTP server. It blocks until ctx is cancelled and the engine has drained, or
// until a fatal error occurs.
func (s *Server) Run(ctx context.Context) (err error) {
	if s.cfg == nil {
		return fmt.Errorf("nil config")
	}
	cfg := s.cfg

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	instanceID := uuid.NewString()
	logger = logger.With(zap.String("instance_id", instanceID))
	logger.Info("Starting lock/mint bridge relayer")

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	store, closeStore, err := s.openStore(ctx, logger)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	signer, err := ethereum.NewKeySignerFromConfig(&cfg.Signer)
	if err != nil {
		return err
	}
	logger.Info("Relayer signer loaded", zap.String("address", signer.Address().Hex()))

	lockClient, err := ethereum.Dial(ctx, &cfg.LockChain, nil, logger)
	if err != nil {
		return fmt.Errorf("initialize lock chain client: %w", err)
	}
	closers = append(closers, func() error { lockClient.Close(); return nil })

	mintClient, err := ethereum.Dial(ctx, &cfg.MintChain, signer, logger)
	if err != nil {
		return fmt.Errorf("initialize mint chain client: %w", err)
	}
	closers = append(closers, func() error { mintClient.Close(); return nil })

	lockLedger, err := ethereum.NewLockLedger(lockClient, common.HexToAddress(cfg.LockChain.ContractAddress))
	if err != nil {
		return fmt.Errorf("bind lock ledger: %w", err)
	}
	mintLedger, err := ethereum.NewMintLedger(mintClient, common.HexToAddress(cfg.MintChain.ContractAddress))
	if err != nil {
		return fmt.Errorf("bind mint ledger: %w", err)
	}

	var observers []notify.Observer
	if cfg.Notifications.LogNotification {
		observers = append(observers, notify.NewLogObserver(logger))
	}
	var hub *notify.Hub
	if cfg.Notifications.WebSocket {
		hub = notify.NewHub(cfg.Notifications.ClientBuffer, logger)
		observers = append(observers, hub)
		closers = append(closers, func() error { hub.Close(); return nil })
	}
	if cfg.Notifications.RedisURL != "" {
		publisher, err := notify.NewRedisPublisher(ctx, cfg.Notifications.RedisURL, cfg.Notifications.RedisChannel,
			cfg.Notifications.PublishTimeout, logger)
		if err != nil {
			return fmt.Errorf("initialize redis publisher: %w", err)
		}
		observers = append(observers, publisher)
		closers = append(closers, publisher.Close)
	}
	sink := notify.NewSink(cfg.Notifications.BufferSize, logger, observers...)

	engine := relayer.NewEngine(cfg, lockLedger, mintLedger, store, sink, logger)

	var hubHandler http.Handler
	if hub != nil {
		hubHandler = hub
	}
	validator := auth.NewJWTValidator(cfg.Auth.OperatorSecret, cfg.Auth.Issuer)
	if !validator.IsConfigured() {
		logger.Warn("No operator secret configured, admin endpoints are disabled")
	}
	router := NewRouter(cfg, engine, store, hubHandler, validator, logger)
	httpServer := httpserver.New(&cfg.Server, router)

	// the sink outlives the engine so the final records of the drain are delivered
	sinkCtx, stopSink := context.WithCancel(context.WithoutCancel(ctx))
	sinkDone := make(chan struct{})
	go func() {
		defer close(sinkDone)
		_ = sink.Run(sinkCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopSink()
		return engine.Run(gctx)
	})
	g.Go(func() error {
		return httpserver.ServeAndWait(gctx, logger, httpServer, cfg.Server.ShutdownTimeout)
	})

	err = g.Wait()
	<-sinkDone
	if dropped := sink.Dropped(); dropped > 0 {
		logger.Warn("Notifications dropped on overflow", zap.Uint64("dropped", dropped))
	}
	logger.Info("Relayer stopped")
	return err
}

func (s *Server) openStore(ctx context.Context, logger *zap.Logger) (db.Store, func() error, error) {
	if s.memory {
		logger.Warn("Using in-memory store, relay state will not survive a restart")
		return db.NewMemoryStore(), func() error { return nil }, nil
	}

	bunDB, err := pgutil.ConnectDB(ctx, &s.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect relayer db: %w", err)
	}
	logger.Info("Database connection established", zap.String("database", s.cfg.Database.Database))
	return db.NewStore(bunDB), bunDB.Close, nil
}

// NewRouter builds the operational HTTP surface. hub may be nil.
func NewRouter(
	cfg *config.Config,
	engine Engine,
	store db.AdminStore,
	hub http.Handler,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) http.Handler {
	h := &handler{engine: engine, store: store, logger: logger.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	if hub != nil {
		// websocket connections are long lived, keep them out of the timeout middleware
		r.Handle("/ws/notifications", hub)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
		r.Use(middleware.Logger)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/status", apphttp.HandleError(h.status))
			r.Get("/tasks", apphttp.HandleError(h.listTasks))
			r.Get("/tasks/{id}", apphttp.HandleError(h.getTask))
			r.With(auth.RequireOperator(validator, logger)).Post("/tasks/{id}/retry", apphttp.HandleError(h.retryTask))
		})
	})

	return r
}
