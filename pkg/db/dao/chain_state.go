package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// ChainStateDao is a data access object that maps directly to the 'chain_state' table in PostgreSQL.
// It holds one observation cursor per key: the lock chain id, or mint:<chain id> for
// the Minted observer.
type ChainStateDao struct {
	bun.BaseModel `bun:"table:chain_state"`
	ChainID       string    `json:"chain_id" bun:",pk,type:varchar(100)"`
	LastBlock     int64     `json:"last_block" bun:",notnull"`
	UpdatedAt     time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
