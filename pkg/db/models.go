package db

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/lockmint-relayer/pkg/db/dao"
)

// TaskStatus represents the relay state of a lock id
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusSubmitted TaskStatus = "submitted"
	TaskStatusConfirmed TaskStatus = "confirmed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether the task has left the queue for good
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusConfirmed || s == TaskStatusFailed
}

// Valid reports whether s is a known status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusSubmitted, TaskStatusConfirmed, TaskStatusFailed:
		return true
	}
	return false
}

// RelayTask is a lock event together with its relay progress.
type RelayTask struct {
	LockID         *big.Int
	SourceChainID  string
	From           common.Address
	To             common.Address
	Amount         *big.Int
	SourceBlock    uint64
	SourceLogIndex uint
	SourceTxHash   common.Hash

	Status          TaskStatus
	Attempts        uint32
	LastError       string
	SubmittedTxHash *common.Hash
	NextAttemptAt   time.Time

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// Clone returns a deep copy of t
func (t *RelayTask) Clone() *RelayTask {
	c := *t
	c.LockID = new(big.Int).Set(t.LockID)
	c.Amount = new(big.Int).Set(t.Amount)
	if t.SubmittedTxHash != nil {
		h := *t.SubmittedTxHash
		c.SubmittedTxHash = &h
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}

// TaskFilter narrows ListTasks
type TaskFilter struct {
	Status *TaskStatus
	Limit  int
}

func idDecimal(id *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(id, 0)
}

func idsDecimal(ids []*big.Int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ids))
	for i, id := range ids {
		out[i] = idDecimal(id)
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optHash(h *common.Hash) *string {
	if h == nil {
		return nil
	}
	s := h.Hex()
	return &s
}

func parseOptHash(s *string) *common.Hash {
	if s == nil {
		return nil
	}
	h := common.HexToHash(*s)
	return &h
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRelayTaskDao(t *RelayTask) *dao.RelayTaskDao {
	return &dao.RelayTaskDao{
		LockID:          idDecimal(t.LockID),
		SourceChainID:   t.SourceChainID,
		Sender:          t.From.Hex(),
		Recipient:       t.To.Hex(),
		Amount:          decimal.NewFromBigInt(t.Amount, 0),
		SourceBlock:     int64(t.SourceBlock),
		SourceLogIndex:  int(t.SourceLogIndex),
		SourceTxHash:    t.SourceTxHash.Hex(),
		Status:          string(t.Status),
		Attempts:        int64(t.Attempts),
		LastError:       optString(t.LastError),
		SubmittedTxHash: optHash(t.SubmittedTxHash),
		NextAttemptAt:   t.NextAttemptAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func fromRelayTaskDao(d *dao.RelayTaskDao) *RelayTask {
	return &RelayTask{
		LockID:          d.LockID.BigInt(),
		SourceChainID:   d.SourceChainID,
		From:            common.HexToAddress(d.Sender),
		To:              common.HexToAddress(d.Recipient),
		Amount:          d.Amount.BigInt(),
		SourceBlock:     uint64(d.SourceBlock),
		SourceLogIndex:  uint(d.SourceLogIndex),
		SourceTxHash:    common.HexToHash(d.SourceTxHash),
		Status:          TaskStatus(d.Status),
		Attempts:        uint32(d.Attempts),
		LastError:       deref(d.LastError),
		SubmittedTxHash: parseOptHash(d.SubmittedTxHash),
		NextAttemptAt:   d.NextAttemptAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toRelayArchiveDao(t *RelayTask, completedAt time.Time) *dao.RelayArchiveDao {
	return &dao.RelayArchiveDao{
		LockID:          idDecimal(t.LockID),
		SourceChainID:   t.SourceChainID,
		Sender:          t.From.Hex(),
		Recipient:       t.To.Hex(),
		Amount:          decimal.NewFromBigInt(t.Amount, 0),
		SourceBlock:     int64(t.SourceBlock),
		SourceLogIndex:  int(t.SourceLogIndex),
		SourceTxHash:    t.SourceTxHash.Hex(),
		Status:          string(t.Status),
		Attempts:        int64(t.Attempts),
		LastError:       optString(t.LastError),
		SubmittedTxHash: optHash(t.SubmittedTxHash),
		CreatedAt:       t.CreatedAt,
		CompletedAt:     completedAt,
	}
}

func fromRelayArchiveDao(d *dao.RelayArchiveDao) *RelayTask {
	completedAt := d.CompletedAt
	return &RelayTask{
		LockID:          d.LockID.BigInt(),
		SourceChainID:   d.SourceChainID,
		From:            common.HexToAddress(d.Sender),
		To:              common.HexToAddress(d.Recipient),
		Amount:          d.Amount.BigInt(),
		SourceBlock:     uint64(d.SourceBlock),
		SourceLogIndex:  uint(d.SourceLogIndex),
		SourceTxHash:    common.HexToHash(d.SourceTxHash),
		Status:          TaskStatus(d.Status),
		Attempts:        uint32(d.Attempts),
		LastError:       deref(d.LastError),
		SubmittedTxHash: parseOptHash(d.SubmittedTxHash),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.CompletedAt,
		CompletedAt:     &completedAt,
	}
}
