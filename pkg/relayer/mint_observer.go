package relayer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/internal/metrics"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
)

const mintCursorPrefix = "mint:"

// MintObserver follows Minted events on the mint ledger. Every observed id is
// recorded in the replay guard, which covers mints made by another relayer
// instance or by hand.
type MintObserver struct {
	target MintTarget
	store  db.CursorStore
	guard  *ReplayGuard
	logger *zap.Logger

	chain    string
	key      string
	margin   uint64
	maxRange uint64
	interval time.Duration

	next uint64
}

// NewMintObserver creates an observer for the mint ledger described by cfg
func NewMintObserver(cfg *config.ChainConfig, target MintTarget, store db.CursorStore, guard *ReplayGuard, logger *zap.Logger) *MintObserver {
	maxRange := cfg.MaxBlockRange
	if maxRange == 0 {
		maxRange = 1
	}
	return &MintObserver{
		target:   target,
		store:    store,
		guard:    guard,
		logger:   logger.Named("mint-observer"),
		chain:    cfg.Name,
		key:      mintCursorPrefix + target.ChainID().String(),
		margin:   cfg.ReorgSafetyMargin,
		maxRange: maxRange,
		interval: cfg.PollingInterval,
	}
}

// Load positions the observer. Without a stored cursor it starts at the
// current safe head rather than scanning the whole chain.
func (o *MintObserver) Load(ctx context.Context) error {
	last, ok, err := o.store.GetCursor(ctx, o.key)
	if err != nil {
		return persistenceError("load mint cursor", err)
	}
	if ok {
		o.next = last + 1
		return nil
	}

	latest, err := o.target.LatestBlock(ctx)
	if err != nil {
		return classifyChainError(err)
	}
	if latest > o.margin {
		o.next = latest - o.margin
	}
	return nil
}

// Poll reads Minted events up to the safe head
func (o *MintObserver) Poll(ctx context.Context) error {
	for {
		latest, err := o.target.LatestBlock(ctx)
		if err != nil {
			return classifyChainError(err)
		}
		metrics.ChainHead.WithLabelValues(o.chain).Set(float64(latest))
		if latest < o.margin || latest-o.margin < o.next {
			return nil
		}
		to := latest - o.margin
		if span := o.next + o.maxRange - 1; span < to {
			to = span
		}

		events, err := o.target.MintedInRange(ctx, o.next, to)
		if err != nil {
			return classifyChainError(err)
		}
		for _, ev := range events {
			o.guard.MarkProcessed(ev.ID)
			metrics.MintedObserved.WithLabelValues(o.chain).Inc()
			o.logger.Info("Minted",
				zap.String("lock_id", ev.ID.String()),
				zap.String("recipient", ev.To.Hex()),
				zap.String("amount", formatAmount(ev.Amount)),
				zap.Uint64("block", ev.BlockNumber),
				zap.String("tx_hash", ev.TxHash.Hex()))
		}

		if err := o.store.SetCursor(ctx, o.key, to); err != nil {
			return persistenceError("save mint cursor", err)
		}
		o.next = to + 1
	}
}

// Run polls until ctx is cancelled. Only persistence failures are returned.
func (o *MintObserver) Run(ctx context.Context) error {
	loaded := false
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		err := o.step(ctx, &loaded)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrPersistence) {
				return err
			}
			metrics.ErrorsTotal.WithLabelValues("mint_observer", failureLabel(err)).Inc()
			o.logger.Warn("Mint observation failed, retrying next tick", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (o *MintObserver) step(ctx context.Context, loaded *bool) error {
	if !*loaded {
		if err := o.Load(ctx); err != nil {
			return err
		}
		*loaded = true
		o.logger.Info("Starting mint observation", zap.Uint64("next_block", o.next))
	}
	return o.Poll(ctx)
}
