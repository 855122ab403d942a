package db

import (
	"context"
	"errors"
	"math/big"
	"time"
)

var (
	// ErrTaskNotFound is returned when no task exists for a lock id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskNotFailed is returned when requeueing a task that is not Failed.
	ErrTaskNotFailed = errors.New("task is not failed")
)

// CursorStore persists observation cursors keyed by chain.
type CursorStore interface {
	// GetCursor returns the last fully handled block for key, and false when no
	// cursor has been written yet.
	GetCursor(ctx context.Context, key string) (uint64, bool, error)
	SetCursor(ctx context.Context, key string, block uint64) error
}

// QueueStore persists relay tasks.
type QueueStore interface {
	// EnqueueBatch inserts tasks for ids that are neither queued nor archived
	// and moves the cursor for cursorKey to cursorBlock, in one transaction.
	// It returns the number of tasks inserted.
	EnqueueBatch(ctx context.Context, cursorKey string, tasks []*RelayTask, cursorBlock uint64) (int, error)
	// NextPending returns the lowest-id Pending or Submitted task that is due at
	// now and not in exclude, or nil.
	NextPending(ctx context.Context, now time.Time, exclude []*big.Int) (*RelayTask, error)
	UpdateTask(ctx context.Context, task *RelayTask) error
	// ArchiveTask moves a terminal task out of the queue.
	ArchiveTask(ctx context.Context, task *RelayTask) error
	IsConfirmed(ctx context.Context, id *big.Int) (bool, error)
}

// AdminStore backs the operator API.
type AdminStore interface {
	GetTask(ctx context.Context, id *big.Int) (*RelayTask, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*RelayTask, error)
	CountByStatus(ctx context.Context) (map[TaskStatus]int, error)
	// RequeueFailed moves an archived Failed task back to the queue as Pending
	// with its attempts reset.
	RequeueFailed(ctx context.Context, id *big.Int) (*RelayTask, error)
}

// Store is the full persistence surface of the relayer.
type Store interface {
	CursorStore
	QueueStore
	AdminStore
}
