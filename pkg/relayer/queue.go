package relayer

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/chainsafe/lockmint-relayer/internal/metrics"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
)

// DeliveryQueue is the durable, id-ordered queue between observation and
// relaying. It also tracks which ids are currently held by a worker so a lock
// id never has two submissions in flight.
type DeliveryQueue struct {
	store db.QueueStore

	mu       sync.Mutex
	inFlight map[string]*big.Int

	wake chan struct{}
	now  func() time.Time
}

// NewDeliveryQueue creates a queue backed by store
func NewDeliveryQueue(store db.QueueStore) *DeliveryQueue {
	return &DeliveryQueue{
		store:    store,
		inFlight: make(map[string]*big.Int),
		wake:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Enqueue stores a task for every event whose id is not already queued or
// archived, and moves the cursor for chainID to cursorBlock in the same
// transaction. It returns the number of new tasks.
func (q *DeliveryQueue) Enqueue(ctx context.Context, chainID string, events []*ethereum.LockEvent, cursorBlock uint64) (int, error) {
	now := q.now()
	tasks := make([]*db.RelayTask, 0, len(events))
	for _, ev := range events {
		tasks = append(tasks, &db.RelayTask{
			LockID:         ev.ID,
			SourceChainID:  chainID,
			From:           ev.From,
			To:             ev.To,
			Amount:         ev.Amount,
			SourceBlock:    ev.BlockNumber,
			SourceLogIndex: ev.LogIndex,
			SourceTxHash:   ev.TxHash,
			Status:         db.TaskStatusPending,
			NextAttemptAt:  now,
		})
	}

	inserted, err := q.store.EnqueueBatch(ctx, chainID, tasks, cursorBlock)
	if err != nil {
		return 0, persistenceError("enqueue batch", err)
	}
	if inserted > 0 {
		metrics.TasksEnqueued.Add(float64(inserted))
		q.notify()
	}
	return inserted, nil
}

// dequeueClaimAttempts bounds how often DequeueNext retries after losing a
// claim to a concurrent caller.
const dequeueClaimAttempts = 3

// DequeueNext returns the lowest due task that is not in flight and marks it
// in flight, or nil when nothing is ready. The caller must Release the id.
// The store is queried without holding the in-flight lock.
func (q *DeliveryQueue) DequeueNext(ctx context.Context) (*db.RelayTask, error) {
	q.mu.Lock()
	exclude := make([]*big.Int, 0, len(q.inFlight))
	for _, id := range q.inFlight {
		exclude = append(exclude, id)
	}
	q.mu.Unlock()

	for range dequeueClaimAttempts {
		task, err := q.store.NextPending(ctx, q.now(), exclude)
		if err != nil {
			return nil, persistenceError("next pending", err)
		}
		if task == nil {
			return nil, nil
		}
		if q.claim(task.LockID) {
			return task, nil
		}
		exclude = append(exclude, task.LockID)
	}
	return nil, nil
}

// claim marks id in flight unless another caller already holds it
func (q *DeliveryQueue) claim(id *big.Int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := id.String()
	if _, held := q.inFlight[key]; held {
		return false
	}
	q.inFlight[key] = new(big.Int).Set(id)
	return true
}

// Release makes id eligible for dequeue again
func (q *DeliveryQueue) Release(id *big.Int) {
	q.mu.Lock()
	delete(q.inFlight, id.String())
	q.mu.Unlock()
	q.notify()
}

// InFlight returns the number of ids currently held by workers
func (q *DeliveryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inFlight)
}

// Wait blocks for up to d, returning early when new work may be available or
// ctx is done.
func (q *DeliveryQueue) Wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-q.wake:
	case <-timer.C:
	}
}

// Notify wakes a waiting dispatcher
func (q *DeliveryQueue) Notify() {
	q.notify()
}

func (q *DeliveryQueue) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
