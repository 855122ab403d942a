package relayer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/internal/metrics"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
	"github.com/chainsafe/lockmint-relayer/pkg/notify"
)

// Batch is a contiguous block range of the lock ledger and the events in it
type Batch struct {
	From   uint64
	To     uint64
	Events []*ethereum.LockEvent
}

// EventCursor walks the lock ledger's event log in block ranges that stay
// reorgSafetyMargin blocks behind head. The persisted cursor is the last block
// whose events are durably enqueued.
type EventCursor struct {
	source  LockSource
	queue   *DeliveryQueue
	store   db.CursorStore
	emitter notify.Emitter
	logger  *zap.Logger

	chain      string
	key        string
	startBlock uint64
	margin     uint64
	maxRange   uint64
	interval   time.Duration

	next   atomic.Uint64
	loaded atomic.Bool
	ready  atomic.Bool
}

// NewEventCursor creates a cursor over source configured by cfg
func NewEventCursor(
	cfg *config.ChainConfig,
	source LockSource,
	queue *DeliveryQueue,
	store db.CursorStore,
	emitter notify.Emitter,
	logger *zap.Logger,
) *EventCursor {
	maxRange := cfg.MaxBlockRange
	if maxRange == 0 {
		maxRange = 1
	}
	return &EventCursor{
		source:     source,
		queue:      queue,
		store:      store,
		emitter:    emitter,
		logger:     logger.Named("cursor"),
		chain:      cfg.Name,
		key:        source.ChainID().String(),
		startBlock: cfg.StartBlock,
		margin:     cfg.ReorgSafetyMargin,
		maxRange:   maxRange,
		interval:   cfg.PollingInterval,
	}
}

// Load reads the persisted cursor. Without one, observation starts at the
// configured start block.
func (c *EventCursor) Load(ctx context.Context) error {
	last, ok, err := c.store.GetCursor(ctx, c.key)
	if err != nil {
		return persistenceError("load cursor", err)
	}
	if ok {
		c.next.Store(last + 1)
		c.logger.Info("Loaded cursor", zap.String("chain_id", c.key), zap.Uint64("last_block", last))
	} else {
		c.next.Store(c.startBlock)
		c.logger.Info("No cursor stored, starting from configured block",
			zap.String("chain_id", c.key), zap.Uint64("start_block", c.startBlock))
	}
	c.loaded.Store(true)
	return nil
}

// NextBlock is the first block the next batch will read
func (c *EventCursor) NextBlock() uint64 {
	return c.next.Load()
}

// Ready reports whether one full observation pass has completed
func (c *EventCursor) Ready() bool {
	return c.ready.Load()
}

// Next returns the next safe batch, or nil when the cursor has caught up with
// head minus the safety margin.
func (c *EventCursor) Next(ctx context.Context) (*Batch, error) {
	if !c.loaded.Load() {
		return nil, errors.New("cursor not loaded")
	}

	latest, err := c.source.LatestBlock(ctx)
	if err != nil {
		return nil, classifyChainError(err)
	}
	metrics.ChainHead.WithLabelValues(c.chain).Set(float64(latest))

	if latest < c.margin {
		return nil, nil
	}
	safe := latest - c.margin
	from := c.next.Load()
	if from > safe {
		return nil, nil
	}
	to := safe
	if span := from + c.maxRange - 1; span < to {
		to = span
	}

	events, err := c.source.LockEventsInRange(ctx, from, to)
	if err != nil {
		return nil, classifyChainError(err)
	}
	return &Batch{From: from, To: to, Events: events}, nil
}

// Commit hands the batch to the delivery queue, which persists the tasks and
// the cursor together. The in-memory position only moves after that succeeds.
func (c *EventCursor) Commit(ctx context.Context, batch *Batch) error {
	if batch.From != c.next.Load() {
		return fmt.Errorf("batch starts at %d, cursor is at %d", batch.From, c.next.Load())
	}

	inserted, err := c.queue.Enqueue(ctx, c.key, batch.Events, batch.To)
	if err != nil {
		return err
	}
	c.next.Store(batch.To + 1)

	metrics.EventsObserved.WithLabelValues(c.chain).Add(float64(len(batch.Events)))
	metrics.LastProcessedBlock.WithLabelValues(c.chain).Set(float64(batch.To))

	for _, ev := range batch.Events {
		c.emitter.Emit(notify.Record{
			Type: notify.TypeObserved,
			ID:   ev.ID.String(),
			Detail: fmt.Sprintf("lock of %s to %s at block %d",
				formatAmount(ev.Amount), ev.To.Hex(), ev.BlockNumber),
		})
	}

	if len(batch.Events) > 0 {
		c.logger.Info("Enqueued lock events",
			zap.Uint64("from_block", batch.From),
			zap.Uint64("to_block", batch.To),
			zap.Int("events", len(batch.Events)),
			zap.Int("new_tasks", inserted))
	} else {
		c.logger.Debug("Advanced cursor",
			zap.Uint64("from_block", batch.From),
			zap.Uint64("to_block", batch.To))
	}
	return nil
}

// Poll reads and commits batches until the cursor catches up
func (c *EventCursor) Poll(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := c.Next(ctx)
		if err != nil {
			return err
		}
		if batch == nil {
			c.ready.Store(true)
			return nil
		}
		if err := c.Commit(ctx, batch); err != nil {
			return err
		}
	}
}

// Run polls the lock ledger every polling interval until ctx is cancelled.
// Chain errors are retried on the next tick; persistence failures are returned.
func (c *EventCursor) Run(ctx context.Context) error {
	c.logger.Info("Starting lock event observation",
		zap.Uint64("next_block", c.next.Load()),
		zap.Uint64("reorg_safety_margin", c.margin),
		zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrPersistence) {
				c.logger.Error("Cursor persistence failed", zap.Error(err))
				return err
			}
			metrics.ErrorsTotal.WithLabelValues("cursor", failureLabel(err)).Inc()
			c.logger.Warn("Lock event poll failed, retrying next tick", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
