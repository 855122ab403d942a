package dao

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// RelayTaskDao is a data access object that maps directly to the 'relay_queue' table in PostgreSQL.
// Rows leave the table when the task reaches a terminal status.
type RelayTaskDao struct {
	bun.BaseModel   `bun:"table:relay_queue,alias:rq"`
	LockID          decimal.Decimal `json:"lock_id" bun:"lock_id,pk,type:numeric(78,0)"`
	SourceChainID   string          `json:"source_chain_id" bun:",notnull,type:varchar(32)"`
	Sender          string          `json:"sender" bun:",notnull,type:varchar(42)"`
	Recipient       string          `json:"recipient" bun:",notnull,type:varchar(42)"`
	Amount          decimal.Decimal `json:"amount" bun:",notnull,type:numeric(78,0)"`
	SourceBlock     int64           `json:"source_block" bun:",notnull"`
	SourceLogIndex  int             `json:"source_log_index" bun:",notnull"`
	SourceTxHash    string          `json:"source_tx_hash" bun:",notnull,type:varchar(66)"`
	Status          string          `json:"status" bun:",notnull,type:varchar(16)"`
	Attempts        int64           `json:"attempts" bun:",notnull"`
	LastError       *string         `json:"last_error,omitempty" bun:",type:text"`
	SubmittedTxHash *string         `json:"submitted_tx_hash,omitempty" bun:",type:varchar(66)"`
	NextAttemptAt   time.Time       `json:"next_attempt_at" bun:",notnull,nullzero,default:current_timestamp"`
	CreatedAt       time.Time       `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	UpdatedAt       time.Time       `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}

// RelayArchiveDao is a data access object that maps directly to the 'relay_archive' table in PostgreSQL.
// It keeps Confirmed and Failed tasks.
type RelayArchiveDao struct {
	bun.BaseModel   `bun:"table:relay_archive,alias:ra"`
	LockID          decimal.Decimal `json:"lock_id" bun:"lock_id,pk,type:numeric(78,0)"`
	SourceChainID   string          `json:"source_chain_id" bun:",notnull,type:varchar(32)"`
	Sender          string          `json:"sender" bun:",notnull,type:varchar(42)"`
	Recipient       string          `json:"recipient" bun:",notnull,type:varchar(42)"`
	Amount          decimal.Decimal `json:"amount" bun:",notnull,type:numeric(78,0)"`
	SourceBlock     int64           `json:"source_block" bun:",notnull"`
	SourceLogIndex  int             `json:"source_log_index" bun:",notnull"`
	SourceTxHash    string          `json:"source_tx_hash" bun:",notnull,type:varchar(66)"`
	Status          string          `json:"status" bun:",notnull,type:varchar(16)"`
	Attempts        int64           `json:"attempts" bun:",notnull"`
	LastError       *string         `json:"last_error,omitempty" bun:",type:text"`
	SubmittedTxHash *string         `json:"submitted_tx_hash,omitempty" bun:",type:varchar(66)"`
	CreatedAt       time.Time       `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	CompletedAt     time.Time       `json:"completed_at" bun:",notnull,nullzero,default:current_timestamp"`
}
