package relayer

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/lockmint-relayer/pkg/app/errors"
	apphttp "github.com/chainsafe/lockmint-relayer/pkg/app/http"
	"github.com/chainsafe/lockmint-relayer/pkg/auth"
	"github.com/chainsafe/lockmint-relayer/pkg/db"
	"github.com/chainsafe/lockmint-relayer/pkg/relayer"
)

const (
	defaultTaskLimit = 50
	maxTaskLimit     = 500
	tokenDecimals    = 18
)

// Engine is the part of relayer.Engine the HTTP surface needs
type Engine interface {
	IsReady() bool
	Status(ctx context.Context) (*relayer.Status, error)
	Requeue(ctx context.Context, id *big.Int) (*db.RelayTask, error)
}

var _ Engine = (*relayer.Engine)(nil)

type handler struct {
	engine Engine
	store  db.AdminStore
	logger *zap.Logger
}

type taskResponse struct {
	LockID          string     `json:"lock_id"`
	SourceChainID   string     `json:"source_chain_id"`
	From            string     `json:"from"`
	To              string     `json:"to"`
	Amount          string     `json:"amount"`
	AmountFormatted string     `json:"amount_formatted"`
	SourceBlock     uint64     `json:"source_block"`
	SourceLogIndex  uint       `json:"source_log_index"`
	SourceTxHash    string     `json:"source_tx_hash"`
	Status          string     `json:"status"`
	Attempts        uint32     `json:"attempts"`
	LastError       string     `json:"last_error,omitempty"`
	SubmittedTxHash string     `json:"submitted_tx_hash,omitempty"`
	NextAttemptAt   *time.Time `json:"next_attempt_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func toTaskResponse(t *db.RelayTask) *taskResponse {
	resp := &taskResponse{
		LockID:          t.LockID.String(),
		SourceChainID:   t.SourceChainID,
		From:            t.From.Hex(),
		To:              t.To.Hex(),
		Amount:          t.Amount.String(),
		AmountFormatted: decimal.NewFromBigInt(t.Amount, -tokenDecimals).String(),
		SourceBlock:     t.SourceBlock,
		SourceLogIndex:  t.SourceLogIndex,
		SourceTxHash:    t.SourceTxHash.Hex(),
		Status:          string(t.Status),
		Attempts:        t.Attempts,
		LastError:       t.LastError,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		CompletedAt:     t.CompletedAt,
	}
	if t.SubmittedTxHash != nil {
		resp.SubmittedTxHash = t.SubmittedTxHash.Hex()
	}
	if t.Status == db.TaskStatusPending && !t.NextAttemptAt.IsZero() {
		next := t.NextAttemptAt
		resp.NextAttemptAt = &next
	}
	return resp
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	_ = apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) ready(w http.ResponseWriter, _ *http.Request) {
	if !h.engine.IsReady() {
		apphttp.DefaultErrorHandler(w, apperrors.NotReadyError("relayer is catching up"))
		return
	}
	_ = apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) error {
	st, err := h.engine.Status(r.Context())
	if err != nil {
		h.logger.Error("Failed to collect status", zap.Error(err))
		return apperrors.DependencyError(err, "failed to collect status")
	}
	return apphttp.WriteJSON(w, http.StatusOK, st)
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) error {
	filter := db.TaskFilter{Limit: defaultTaskLimit}

	if s := r.URL.Query().Get("status"); s != "" {
		status := db.TaskStatus(s)
		if !status.Valid() {
			return apperrors.BadRequestError(nil, "unknown status "+strconv.Quote(s))
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		filter.Limit = min(limit, maxTaskLimit)
	}

	tasks, err := h.store.ListTasks(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list tasks", zap.Error(err))
		return apperrors.DependencyError(err, "failed to list tasks")
	}

	out := make([]*taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return apphttp.WriteJSON(w, http.StatusOK, map[string]any{"tasks": out, "count": len(out)})
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) error {
	id, err := lockIDParam(r)
	if err != nil {
		return err
	}

	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrTaskNotFound) {
			return apperrors.ResourceNotFoundError(err, "task not found")
		}
		return apperrors.DependencyError(err, "failed to load task")
	}
	return apphttp.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *handler) retryTask(w http.ResponseWriter, r *http.Request) error {
	id, err := lockIDParam(r)
	if err != nil {
		return err
	}

	task, err := h.engine.Requeue(r.Context(), id)
	switch {
	case errors.Is(err, db.ErrTaskNotFound):
		return apperrors.ResourceNotFoundError(err, "task not found")
	case errors.Is(err, db.ErrTaskNotFailed):
		return apperrors.ConflictError(err, "only failed tasks can be retried")
	case err != nil:
		return apperrors.DependencyError(err, "failed to requeue task")
	}

	fields := []zap.Field{zap.String("lock_id", id.String())}
	if subject, ok := auth.OperatorFromContext(r.Context()); ok {
		fields = append(fields, zap.String("operator", subject))
	}
	h.logger.Info("Task retry requested", fields...)

	return apphttp.WriteJSON(w, http.StatusAccepted, toTaskResponse(task))
}

func lockIDParam(r *http.Request) (*big.Int, error) {
	raw := chi.URLParam(r, "id")
	id, ok := new(big.Int).SetString(raw, 0)
	if !ok || id.Sign() < 0 {
		return nil, apperrors.BadRequestError(nil, "invalid lock id "+strconv.Quote(raw))
	}
	return id, nil
}
