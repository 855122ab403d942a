package relayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainsafe/lockmint-relayer/internal/metrics"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/notify"
)

// Engine orchestrates the relayer: lock observation, the relay worker pool,
// mint observation and periodic reconciliation.
type Engine struct {
	config  *config.Config
	source  LockSource
	target  MintTarget
	store   db.Store
	emitter notify.Emitter
	logger  *zap.Logger

	queue    *DeliveryQueue
	guard    *ReplayGuard
	cursor   *EventCursor
	worker   *RelayWorker
	observer *MintObserver
}

// Status is a point-in-time view of the relayer
type Status struct {
	LockChainID     string                `json:"lock_chain_id"`
	MintChainID     string                `json:"mint_chain_id"`
	Signer          string                `json:"signer"`
	NextBlock       uint64                `json:"next_block"`
	LockHead        uint64                `json:"lock_head"`
	MintHead        uint64                `json:"mint_head"`
	Ready           bool                  `json:"ready"`
	InFlight        int                   `json:"in_flight"`
	ReplayCacheSize int                   `json:"replay_cache_size"`
	Tasks           map[db.TaskStatus]int `json:"tasks"`
}

// NewEngine creates a new relayer engine
func NewEngine(
	cfg *config.Config,
	source LockSource,
	target MintTarget,
	store db.Store,
	emitter notify.Emitter,
	logger *zap.Logger,
) *Engine {
	if emitter == nil {
		emitter = notify.Nop{}
	}
	queue := NewDeliveryQueue(store)
	guard := NewReplayGuard(target, store)

	return &Engine{
		config:   cfg,
		source:   source,
		target:   target,
		store:    store,
		emitter:  emitter,
		logger:   logger,
		queue:    queue,
		guard:    guard,
		cursor:   NewEventCursor(&cfg.LockChain, source, queue, store, emitter, logger),
		worker:   NewRelayWorker(cfg, queue, store, target, guard, emitter, logger),
		observer: NewMintObserver(&cfg.MintChain, target, store, guard, logger),
	}
}

// VerifyRelayer checks that the configured signer is the mint ledger's
// authorized relayer.
func (e *Engine) VerifyRelayer(ctx context.Context) error {
	relayer, err := e.target.Relayer(ctx)
	if err != nil {
		return fmt.Errorf("failed to read relayer: %w", classifyChainError(err))
	}
	signer := e.target.SignerAddress()
	if relayer != signer {
		return fmt.Errorf("%w: signer %s, relayer %s", ErrRelayerMismatch, signer.Hex(), relayer.Hex())
	}
	e.logger.Info("Relayer authorization verified", zap.String("relayer", relayer.Hex()))
	return nil
}

// Run starts all relayer loops and blocks until ctx is cancelled and in-flight
// work has drained, or until one loop fails fatally.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Starting relayer engine",
		zap.String("lock_chain_id", e.source.ChainID().String()),
		zap.String("mint_chain_id", e.target.ChainID().String()),
		zap.String("signer", e.target.SignerAddress().Hex()))

	if e.config.Relay.VerifyRelayer {
		if err := e.VerifyRelayer(ctx); err != nil {
			return err
		}
	}
	if err := e.cursor.Load(ctx); err != nil {
		return fmt.Errorf("failed to load cursor: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.cursor.Run(gctx) })
	g.Go(func() error { return e.worker.Run(gctx) })
	if e.config.Relay.ObserveMints {
		g.Go(func() error { return e.observer.Run(gctx) })
	}
	g.Go(func() error { return e.reconcileLoop(gctx) })

	err := g.Wait()
	if err != nil {
		e.logger.Error("Relayer engine stopped with error", zap.Error(err))
		return err
	}
	e.logger.Info("Relayer engine stopped")
	return nil
}

// IsReady reports whether the lock ledger has been scanned up to the safe head
// at least once.
func (e *Engine) IsReady() bool {
	return e.cursor.Ready()
}

// Status reports cursor, queue and chain positions
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	counts, err := e.store.CountByStatus(ctx)
	if err != nil {
		return nil, persistenceError("count tasks", err)
	}

	st := &Status{
		LockChainID:     e.source.ChainID().String(),
		MintChainID:     e.target.ChainID().String(),
		Signer:          e.target.SignerAddress().Hex(),
		NextBlock:       e.cursor.NextBlock(),
		Ready:           e.IsReady(),
		InFlight:        e.queue.InFlight(),
		ReplayCacheSize: e.guard.Size(),
		Tasks:           counts,
	}
	if head, err := e.source.LatestBlock(ctx); err == nil {
		st.LockHead = head
	}
	if head, err := e.target.LatestBlock(ctx); err == nil {
		st.MintHead = head
	}
	return st, nil
}

// Requeue moves a Failed task back to Pending with its attempts reset
func (e *Engine) Requeue(ctx context.Context, id *big.Int) (*db.RelayTask, error) {
	task, err := e.store.RequeueFailed(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrTaskNotFound) || errors.Is(err, db.ErrTaskNotFailed) {
			return nil, err
		}
		return nil, persistenceError("requeue failed task", err)
	}
	e.queue.Notify()
	e.logger.Info("Failed task requeued by operator", zap.String("lock_id", id.String()))
	return task, nil
}

func (e *Engine) reconcileLoop(ctx context.Context) error {
	interval := e.config.Relay.ReconcileInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := e.reconcile(ctx); err != nil && ctx.Err() == nil {
			metrics.ErrorsTotal.WithLabelValues("reconcile", failureLabel(err)).Inc()
			e.logger.Warn("Reconciliation failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// reconcile refreshes queue and lock ledger gauges
func (e *Engine) reconcile(ctx context.Context) error {
	counts, err := e.store.CountByStatus(ctx)
	if err != nil {
		return persistenceError("count tasks", err)
	}
	for _, s := range []db.TaskStatus{db.TaskStatusPending, db.TaskStatusSubmitted, db.TaskStatusConfirmed, db.TaskStatusFailed} {
		metrics.QueueDepth.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
	if failed := counts[db.TaskStatusFailed]; failed > 0 {
		e.logger.Warn("Failed relay tasks awaiting operator review", zap.Int("failed", failed))
	}

	lockChain := e.config.LockChain.Name
	nonce, err := e.source.Nonce(ctx)
	if err != nil {
		return classifyChainError(err)
	}
	metrics.LockNonce.WithLabelValues(lockChain).Set(float64(nonce.Uint64()))

	balance, err := e.source.LockedBalance(ctx)
	if err != nil {
		return classifyChainError(err)
	}
	metrics.BridgeBalance.WithLabelValues(lockChain, "locked").Set(amountFloat(balance))

	e.logger.Debug("Reconciliation summary",
		zap.Int("pending", counts[db.TaskStatusPending]),
		zap.Int("submitted", counts[db.TaskStatusSubmitted]),
		zap.String("lock_nonce", nonce.String()),
		zap.String("locked_balance", formatAmount(balance)))
	return nil
}
