package db

import (
	"context"
	"math/big"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It loses everything on exit and is meant
// for tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	cursors map[string]uint64
	queue   map[string]*RelayTask
	archive map[string]*RelayTask
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cursors: make(map[string]uint64),
		queue:   make(map[string]*RelayTask),
		archive: make(map[string]*RelayTask),
	}
}

func (m *MemoryStore) GetCursor(_ context.Context, key string) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	block, ok := m.cursors[key]
	return block, ok, nil
}

func (m *MemoryStore) SetCursor(_ context.Context, key string, block uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCursor(key, block)
	return nil
}

func (m *MemoryStore) setCursor(key string, block uint64) {
	if cur, ok := m.cursors[key]; !ok || block > cur {
		m.cursors[key] = block
	}
}

func (m *MemoryStore) EnqueueBatch(_ context.Context, cursorKey string, tasks []*RelayTask, cursorBlock uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	inserted := 0
	for _, t := range tasks {
		key := t.LockID.String()
		if _, ok := m.queue[key]; ok {
			continue
		}
		if _, ok := m.archive[key]; ok {
			continue
		}
		c := t.Clone()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		m.queue[key] = c
		inserted++
	}
	m.setCursor(cursorKey, cursorBlock)
	return inserted, nil
}

func (m *MemoryStore) NextPending(_ context.Context, now time.Time, exclude []*big.Int) (*RelayTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id.String()] = struct{}{}
	}

	var next *RelayTask
	for key, t := range m.queue {
		if _, ok := skip[key]; ok {
			continue
		}
		if t.Status != TaskStatusPending && t.Status != TaskStatusSubmitted {
			continue
		}
		if t.NextAttemptAt.After(now) {
			continue
		}
		if next == nil || t.LockID.Cmp(next.LockID) < 0 {
			next = t
		}
	}
	if next == nil {
		return nil, nil
	}
	return next.Clone(), nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, task *RelayTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := task.LockID.String()
	if _, ok := m.queue[key]; !ok {
		return ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	m.queue[key] = task.Clone()
	return nil
}

func (m *MemoryStore) ArchiveTask(_ context.Context, task *RelayTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := task.LockID.String()
	completedAt := time.Now()
	task.CompletedAt = &completedAt
	task.UpdatedAt = completedAt

	delete(m.queue, key)
	m.archive[key] = task.Clone()
	return nil
}

func (m *MemoryStore) IsConfirmed(_ context.Context, id *big.Int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.archive[id.String()]
	return ok && t.Status == TaskStatusConfirmed, nil
}

func (m *MemoryStore) GetTask(_ context.Context, id *big.Int) (*RelayTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.String()
	if t, ok := m.queue[key]; ok {
		return t.Clone(), nil
	}
	if t, ok := m.archive[key]; ok {
		return t.Clone(), nil
	}
	return nil, ErrTaskNotFound
}

func (m *MemoryStore) ListTasks(_ context.Context, filter TaskFilter) ([]*RelayTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*RelayTask
	for _, src := range []map[string]*RelayTask{m.queue, m.archive} {
		for _, t := range src {
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			out = append(out, t.Clone())
		}
	}
	return limitTasks(out, filter.Limit), nil
}

func (m *MemoryStore) CountByStatus(context.Context) (map[TaskStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[TaskStatus]int{
		TaskStatusPending:   0,
		TaskStatusSubmitted: 0,
		TaskStatusConfirmed: 0,
		TaskStatusFailed:    0,
	}
	for _, src := range []map[string]*RelayTask{m.queue, m.archive} {
		for _, t := range src {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (m *MemoryStore) RequeueFailed(_ context.Context, id *big.Int) (*RelayTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.String()
	archived, ok := m.archive[key]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if archived.Status != TaskStatusFailed {
		return nil, ErrTaskNotFailed
	}

	task := archived.Clone()
	task.Status = TaskStatusPending
	task.Attempts = 0
	task.SubmittedTxHash = nil
	task.CompletedAt = nil
	task.NextAttemptAt = time.Now()
	task.UpdatedAt = task.NextAttemptAt

	delete(m.archive, key)
	m.queue[key] = task
	return task.Clone(), nil
}
