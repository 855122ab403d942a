package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LockEvent is a Locked log read from the lock ledger.
type LockEvent struct {
	ID          *big.Int
	From        common.Address
	To          common.Address
	Amount      *big.Int
	BlockNumber uint64
	LogIndex    uint
	TxHash      common.Hash
}

// MintedEvent is a Minted log read from the mint ledger.
type MintedEvent struct {
	ID          *big.Int
	To          common.Address
	Amount      *big.Int
	BlockNumber uint64
	TxHash      common.Hash
}

// TxRequest is a contract call to be signed and broadcast.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int
	// Replaces is an earlier broadcast of the same call. While it is still
	// pending its nonce is reused with a bumped gas price.
	Replaces *common.Hash
}
