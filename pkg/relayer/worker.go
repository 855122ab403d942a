package relayer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/internal/metrics"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/notify"
)

// RelayWorker drives relay tasks from Pending to a terminal status. A single
// dispatcher dequeues tasks and a bounded pool of goroutines processes them.
type RelayWorker struct {
	queue   *DeliveryQueue
	store   db.QueueStore
	target  MintTarget
	guard   *ReplayGuard
	emitter notify.Emitter
	logger  *zap.Logger

	chain           string
	workers         int
	maxAttempts     uint32
	backoff         Backoff
	dequeueInterval time.Duration
	drainTimeout    time.Duration

	now func() time.Time
}

// NewRelayWorker creates a worker pool
func NewRelayWorker(
	cfg *config.Config,
	queue *DeliveryQueue,
	store db.QueueStore,
	target MintTarget,
	guard *ReplayGuard,
	emitter notify.Emitter,
	logger *zap.Logger,
) *RelayWorker {
	workers := cfg.Relay.Workers
	if workers <= 0 {
		workers = 1
	}
	dequeueInterval := cfg.Relay.DequeueInterval
	if dequeueInterval <= 0 {
		dequeueInterval = time.Second
	}
	return &RelayWorker{
		queue:           queue,
		store:           store,
		target:          target,
		guard:           guard,
		emitter:         emitter,
		logger:          logger.Named("worker"),
		chain:           cfg.MintChain.Name,
		workers:         workers,
		maxAttempts:     cfg.Relay.MaxAttempts,
		backoff:         BackoffFromConfig(&cfg.Relay),
		dequeueInterval: dequeueInterval,
		drainTimeout:    cfg.Relay.DrainTimeout,
		now:             time.Now,
	}
}

// Run dispatches tasks until ctx is cancelled or a persistence failure occurs.
// Tasks already handed to a worker keep running on a separate context that is
// cancelled once the drain timeout expires.
func (w *RelayWorker) Run(ctx context.Context) error {
	w.logger.Info("Starting relay workers",
		zap.Int("workers", w.workers),
		zap.Uint32("max_attempts", w.maxAttempts))

	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	tasks := make(chan *db.RelayTask)
	fatal := make(chan error, w.workers)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				if err := w.process(workCtx, task); err != nil && workCtx.Err() == nil {
					select {
					case fatal <- err:
					default:
					}
				}
			}
		}()
	}

	runErr := w.dispatch(ctx, tasks, fatal)
	close(tasks)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	if runErr != nil {
		cancelWork()
		<-done
	} else {
		w.logger.Info("Draining in-flight relay tasks",
			zap.Int("in_flight", w.queue.InFlight()),
			zap.Duration("drain_timeout", w.drainTimeout))
		timer := time.NewTimer(w.drainTimeout)
		select {
		case <-done:
		case <-timer.C:
			w.logger.Warn("Drain timeout reached, interrupting in-flight tasks",
				zap.Int("in_flight", w.queue.InFlight()))
			cancelWork()
			<-done
		}
		timer.Stop()
	}

	if runErr == nil {
		select {
		case runErr = <-fatal:
		default:
		}
	}
	w.logger.Info("Relay workers stopped")
	return runErr
}

func (w *RelayWorker) dispatch(ctx context.Context, tasks chan<- *db.RelayTask, fatal <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-fatal:
			return err
		default:
		}

		task, err := w.queue.DequeueNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if task == nil {
			w.queue.Wait(ctx, w.dequeueInterval)
			continue
		}

		select {
		case tasks <- task:
		case <-ctx.Done():
			w.queue.Release(task.LockID)
			return nil
		case err := <-fatal:
			w.queue.Release(task.LockID)
			return err
		}
	}
}

// process runs one attempt for task. Only persistence failures are returned;
// every other outcome is recorded on the task.
func (w *RelayWorker) process(ctx context.Context, task *db.RelayTask) error {
	defer w.queue.Release(task.LockID)

	metrics.RelayInFlight.Inc()
	defer metrics.RelayInFlight.Dec()

	start := w.now()
	logger := w.logger.With(zap.String("lock_id", task.LockID.String()))

	processed, err := w.guard.IsProcessed(ctx, task.LockID)
	if err != nil {
		if errors.Is(err, ErrPersistence) {
			return err
		}
		return w.retry(ctx, logger, task, start, err)
	}
	if processed {
		logger.Info("Lock already minted, skipping submission")
		return w.confirm(ctx, logger, task, start, "already_processed", "already processed on chain")
	}

	if task.Attempts >= w.maxAttempts {
		return w.fail(ctx, logger, task, "max_attempts", fmt.Errorf("max attempts (%d) exceeded", w.maxAttempts))
	}

	logger.Info("Submitting mint",
		zap.String("recipient", task.To.Hex()),
		zap.String("amount", formatAmount(task.Amount)),
		zap.Uint32("attempts", task.Attempts))

	var hash common.Hash
	if task.SubmittedTxHash != nil {
		hash, err = w.target.ResubmitMint(ctx, task.LockID, task.To, task.Amount, *task.SubmittedTxHash)
	} else {
		hash, err = w.target.SubmitMint(ctx, task.LockID, task.To, task.Amount)
	}
	if err != nil {
		return w.handleChainError(ctx, logger, task, start, err)
	}
	metrics.TransactionsSent.WithLabelValues(w.chain, "submitted").Inc()

	task.Status = db.TaskStatusSubmitted
	task.SubmittedTxHash = &hash
	task.LastError = ""
	if err := w.store.UpdateTask(ctx, task); err != nil {
		return persistenceError("mark submitted", err)
	}
	w.emitter.Emit(notify.Record{
		Type:   notify.TypeSubmitted,
		ID:     task.LockID.String(),
		Detail: fmt.Sprintf("mint tx %s", hash.Hex()),
	})
	logger.Info("Mint submitted", zap.String("tx_hash", hash.Hex()))

	receipt, err := w.target.WaitForConfirmation(ctx, hash)
	if err != nil {
		return w.handleChainError(ctx, logger, task, start, err)
	}
	if receipt != nil {
		metrics.GasUsed.WithLabelValues("mint").Observe(float64(receipt.GasUsed))
	}
	metrics.TransactionsSent.WithLabelValues(w.chain, "confirmed").Inc()
	return w.confirm(ctx, logger, task, start, "minted", fmt.Sprintf("minted in tx %s", hash.Hex()))
}

func (w *RelayWorker) handleChainError(ctx context.Context, logger *zap.Logger, task *db.RelayTask, start time.Time, err error) error {
	if ctx.Err() != nil {
		// interrupted by shutdown; the persisted state is redelivered on restart
		logger.Warn("Relay attempt interrupted", zap.Error(err))
		return nil
	}

	classified := classifyChainError(err)
	switch {
	case errors.Is(classified, ErrReplayRejection):
		logger.Info("Mint rejected as replay, treating as confirmed", zap.Error(err))
		return w.confirm(ctx, logger, task, start, "replay", "replay rejected on chain")
	case errors.Is(classified, ErrChainRejection):
		metrics.TransactionsSent.WithLabelValues(w.chain, "reverted").Inc()
		return w.fail(ctx, logger, task, "rejected", classified)
	default:
		return w.retry(ctx, logger, task, start, classified)
	}
}

// retry counts a failed attempt and schedules the next one, or fails the task
// when attempts are exhausted. A task that was broadcast is checked against
// the replay guard first: its mint may have landed after the confirmation
// budget ran out.
func (w *RelayWorker) retry(ctx context.Context, logger *zap.Logger, task *db.RelayTask, start time.Time, cause error) error {
	if ctx.Err() != nil {
		return nil
	}

	task.Attempts++
	task.LastError = cause.Error()
	metrics.RelayRetries.WithLabelValues(failureLabel(cause)).Inc()

	if task.Attempts >= w.maxAttempts {
		if task.SubmittedTxHash == nil {
			return w.fail(ctx, logger, task, "max_attempts",
				fmt.Errorf("giving up after %d attempts: %w", task.Attempts, cause))
		}

		processed, err := w.guard.IsProcessed(ctx, task.LockID)
		switch {
		case errors.Is(err, ErrPersistence):
			return err
		case err == nil && processed:
			logger.Info("Mint landed after its confirmation wait, treating as confirmed",
				zap.String("tx_hash", task.SubmittedTxHash.Hex()))
			return w.confirm(ctx, logger, task, start, "late_confirmation",
				fmt.Sprintf("minted in tx %s", task.SubmittedTxHash.Hex()))
		case err == nil:
			return w.fail(ctx, logger, task, "max_attempts",
				fmt.Errorf("giving up after %d attempts: %w", task.Attempts, cause))
		}
		// the guard could not answer; redeliver so process asks it again before
		// its own attempts check
		logger.Warn("Replay guard unavailable for exhausted task", zap.Error(err))
	}

	delay := w.backoff.Delay(task.Attempts)
	task.Status = db.TaskStatusPending
	task.NextAttemptAt = w.now().Add(delay)
	if err := w.store.UpdateTask(ctx, task); err != nil {
		return persistenceError("schedule retry", err)
	}

	logger.Warn("Relay attempt failed, will retry",
		zap.Uint32("attempts", task.Attempts),
		zap.Duration("backoff", delay),
		zap.Error(cause))
	return nil
}

func (w *RelayWorker) confirm(ctx context.Context, logger *zap.Logger, task *db.RelayTask, start time.Time, outcome, detail string) error {
	task.Status = db.TaskStatusConfirmed
	task.LastError = ""
	if err := w.store.ArchiveTask(ctx, task); err != nil {
		return persistenceError("archive confirmed", err)
	}
	w.guard.MarkProcessed(task.LockID)

	metrics.RelayConfirmed.WithLabelValues(outcome).Inc()
	metrics.RelayDuration.Observe(w.now().Sub(start).Seconds())

	w.emitter.Emit(notify.Record{
		Type:   notify.TypeConfirmed,
		ID:     task.LockID.String(),
		Detail: detail,
	})
	logger.Info("Relay confirmed",
		zap.String("outcome", outcome),
		zap.String("recipient", task.To.Hex()),
		zap.String("amount", formatAmount(task.Amount)))
	return nil
}

func (w *RelayWorker) fail(ctx context.Context, logger *zap.Logger, task *db.RelayTask, reason string, cause error) error {
	task.Status = db.TaskStatusFailed
	task.LastError = cause.Error()
	if err := w.store.ArchiveTask(ctx, task); err != nil {
		return persistenceError("archive failed", err)
	}

	metrics.RelayFailed.WithLabelValues(reason).Inc()
	w.emitter.Emit(notify.Record{
		Type:   notify.TypeFailed,
		ID:     task.LockID.String(),
		Detail: task.LastError,
	})
	logger.Error("Relay failed, operator action required",
		zap.String("reason", reason),
		zap.Uint32("attempts", task.Attempts),
		zap.Error(cause))
	return nil
}
