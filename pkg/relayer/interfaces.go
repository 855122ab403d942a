package relayer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
)

// LockSource is the lock ledger side of the bridge
type LockSource interface {
	ChainID() *big.Int
	LatestBlock(ctx context.Context) (uint64, error)
	LockEventsInRange(ctx context.Context, from, to uint64) ([]*ethereum.LockEvent, error)
	Nonce(ctx context.Context) (*big.Int, error)
	LockedBalance(ctx context.Context) (*big.Int, error)
}

// MintTarget is the mint ledger side of the bridge
type MintTarget interface {
	ChainID() *big.Int
	SignerAddress() common.Address
	LatestBlock(ctx context.Context) (uint64, error)
	IsProcessed(ctx context.Context, id *big.Int) (bool, error)
	Relayer(ctx context.Context) (common.Address, error)
	SubmitMint(ctx context.Context, id *big.Int, to common.Address, amount *big.Int) (common.Hash, error)
	ResubmitMint(ctx context.Context, id *big.Int, to common.Address, amount *big.Int, prev common.Hash) (common.Hash, error)
	WaitForConfirmation(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	MintedInRange(ctx context.Context, from, to uint64) ([]*ethereum.MintedEvent, error)
}

var (
	_ LockSource = (*ethereum.LockLedger)(nil)
	_ MintTarget = (*ethereum.MintLedger)(nil)
)
