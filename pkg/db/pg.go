package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/lockmint-relayer/pkg/db/dao"
)

type pgStore struct {
	db *bun.DB
}

var _ Store = (*pgStore)(nil)

// NewStore creates a new postgres implementation of the relayer store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) GetCursor(ctx context.Context, key string) (uint64, bool, error) {
	state := new(dao.ChainStateDao)
	err := s.db.NewSelect().
		Model(state).
		Where("chain_id = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get cursor: %w", err)
	}
	return uint64(state.LastBlock), true, nil
}

func (s *pgStore) SetCursor(ctx context.Context, key string, block uint64) error {
	if err := upsertCursor(ctx, s.db, key, block); err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	return nil
}

// upsertCursor never moves a cursor backwards.
func upsertCursor(ctx context.Context, db bun.IDB, key string, block uint64) error {
	_, err := db.NewInsert().
		Model(&dao.ChainStateDao{ChainID: key, LastBlock: int64(block), UpdatedAt: time.Now()}).
		On("CONFLICT (chain_id) DO UPDATE").
		Set("last_block = GREATEST(chain_state.last_block, EXCLUDED.last_block)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *pgStore) EnqueueBatch(ctx context.Context, cursorKey string, tasks []*RelayTask, cursorBlock uint64) (int, error) {
	inserted := 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(tasks) > 0 {
			ids := make([]*big.Int, len(tasks))
			for i, t := range tasks {
				ids[i] = t.LockID
			}

			var archived []dao.RelayArchiveDao
			err := tx.NewSelect().
				Model(&archived).
				Column("lock_id").
				Where("lock_id IN (?)", bun.In(idsDecimal(ids))).
				Scan(ctx)
			if err != nil {
				return fmt.Errorf("failed to check archive: %w", err)
			}
			skip := make(map[string]struct{}, len(archived))
			for _, a := range archived {
				skip[a.LockID.String()] = struct{}{}
			}

			var rows []*dao.RelayTaskDao
			for _, t := range tasks {
				row := toRelayTaskDao(t)
				if _, ok := skip[row.LockID.String()]; ok {
					continue
				}
				rows = append(rows, row)
			}

			if len(rows) > 0 {
				res, err := tx.NewInsert().
					Model(&rows).
					On("CONFLICT (lock_id) DO NOTHING").
					Exec(ctx)
				if err != nil {
					return fmt.Errorf("failed to insert tasks: %w", err)
				}
				n, err := res.RowsAffected()
				if err != nil {
					return err
				}
				inserted = int(n)
			}
		}

		if err := upsertCursor(ctx, tx, cursorKey, cursorBlock); err != nil {
			return fmt.Errorf("failed to advance cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue batch: %w", err)
	}
	return inserted, nil
}

func (s *pgStore) NextPending(ctx context.Context, now time.Time, exclude []*big.Int) (*RelayTask, error) {
	row := new(dao.RelayTaskDao)
	q := s.db.NewSelect().
		Model(row).
		Where("status IN (?)", bun.In([]string{string(TaskStatusPending), string(TaskStatusSubmitted)})).
		Where("next_attempt_at <= ?", now).
		OrderExpr("lock_id ASC").
		Limit(1)
	if len(exclude) > 0 {
		q = q.Where("lock_id NOT IN (?)", bun.In(idsDecimal(exclude)))
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select next task: %w", err)
	}
	return fromRelayTaskDao(row), nil
}

func (s *pgStore) UpdateTask(ctx context.Context, task *RelayTask) error {
	row := toRelayTaskDao(task)
	row.UpdatedAt = time.Now()
	if row.NextAttemptAt.IsZero() {
		row.NextAttemptAt = row.UpdatedAt
	}

	res, err := s.db.NewUpdate().
		Model(row).
		Column("status", "attempts", "last_error", "submitted_tx_hash", "next_attempt_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	task.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *pgStore) ArchiveTask(ctx context.Context, task *RelayTask) error {
	completedAt := time.Now()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*dao.RelayTaskDao)(nil)).
			Where("lock_id = ?", idDecimal(task.LockID)).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewInsert().
			Model(toRelayArchiveDao(task, completedAt)).
			On("CONFLICT (lock_id) DO UPDATE").
			Set("status = EXCLUDED.status").
			Set("attempts = EXCLUDED.attempts").
			Set("last_error = EXCLUDED.last_error").
			Set("submitted_tx_hash = EXCLUDED.submitted_tx_hash").
			Set("completed_at = EXCLUDED.completed_at").
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive task: %w", err)
	}
	task.CompletedAt = &completedAt
	return nil
}

func (s *pgStore) IsConfirmed(ctx context.Context, id *big.Int) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*dao.RelayArchiveDao)(nil)).
		Where("lock_id = ?", idDecimal(id)).
		Where("status = ?", string(TaskStatusConfirmed)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check confirmed: %w", err)
	}
	return exists, nil
}

func (s *pgStore) GetTask(ctx context.Context, id *big.Int) (*RelayTask, error) {
	row := new(dao.RelayTaskDao)
	err := s.db.NewSelect().Model(row).Where("lock_id = ?", idDecimal(id)).Scan(ctx)
	if err == nil {
		return fromRelayTaskDao(row), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	archived := new(dao.RelayArchiveDao)
	err = s.db.NewSelect().Model(archived).Where("lock_id = ?", idDecimal(id)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get archived task: %w", err)
	}
	return fromRelayArchiveDao(archived), nil
}

func (s *pgStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*RelayTask, error) {
	var out []*RelayTask

	if filter.Status == nil || !filter.Status.IsTerminal() {
		var rows []dao.RelayTaskDao
		q := s.db.NewSelect().Model(&rows).OrderExpr("lock_id ASC")
		if filter.Status != nil {
			q = q.Where("status = ?", string(*filter.Status))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if err := q.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to list queued tasks: %w", err)
		}
		for i := range rows {
			out = append(out, fromRelayTaskDao(&rows[i]))
		}
	}

	if filter.Status == nil || filter.Status.IsTerminal() {
		var rows []dao.RelayArchiveDao
		q := s.db.NewSelect().Model(&rows).OrderExpr("lock_id ASC")
		if filter.Status != nil {
			q = q.Where("status = ?", string(*filter.Status))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if err := q.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to list archived tasks: %w", err)
		}
		for i := range rows {
			out = append(out, fromRelayArchiveDao(&rows[i]))
		}
	}

	return limitTasks(out, filter.Limit), nil
}

// limitTasks orders by lock id and truncates to limit (0 means no limit).
func limitTasks(tasks []*RelayTask, limit int) []*RelayTask {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].LockID.Cmp(tasks[j].LockID) < 0
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks
}

type statusCount struct {
	Status string `bun:"status"`
	Count  int    `bun:"count"`
}

func (s *pgStore) CountByStatus(ctx context.Context) (map[TaskStatus]int, error) {
	counts := map[TaskStatus]int{
		TaskStatusPending:   0,
		TaskStatusSubmitted: 0,
		TaskStatusConfirmed: 0,
		TaskStatusFailed:    0,
	}

	for _, model := range []any{(*dao.RelayTaskDao)(nil), (*dao.RelayArchiveDao)(nil)} {
		var rows []statusCount
		err := s.db.NewSelect().
			Model(model).
			Column("status").
			ColumnExpr("count(*) AS count").
			Group("status").
			Scan(ctx, &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks: %w", err)
		}
		for _, r := range rows {
			counts[TaskStatus(r.Status)] += r.Count
		}
	}
	return counts, nil
}

func (s *pgStore) RequeueFailed(ctx context.Context, id *big.Int) (*RelayTask, error) {
	var task *RelayTask
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		archived := new(dao.RelayArchiveDao)
		err := tx.NewSelect().
			Model(archived).
			Where("lock_id = ?", idDecimal(id)).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTaskNotFound
			}
			return err
		}
		if archived.Status != string(TaskStatusFailed) {
			return ErrTaskNotFailed
		}

		task = fromRelayArchiveDao(archived)
		task.Status = TaskStatusPending
		task.Attempts = 0
		task.SubmittedTxHash = nil
		task.CompletedAt = nil
		task.NextAttemptAt = time.Now()
		task.UpdatedAt = task.NextAttemptAt

		if _, err := tx.NewDelete().Model(archived).WherePK().Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(toRelayTaskDao(task)).Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrTaskNotFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to requeue task: %w", err)
	}
	return task, nil
}
