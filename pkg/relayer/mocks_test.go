package relayer

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
	"github.com/chainsafe/lockmint-relayer/pkg/notify"
)

// MockLockSource is a mock implementation of LockSource
type MockLockSource struct {
	ChainIDValue          *big.Int
	LatestBlockFunc       func(ctx context.Context) (uint64, error)
	LockEventsInRangeFunc func(ctx context.Context, from, to uint64) ([]*ethereum.LockEvent, error)
	NonceFunc             func(ctx context.Context) (*big.Int, error)
	LockedBalanceFunc     func(ctx context.Context) (*big.Int, error)
}

func (m *MockLockSource) ChainID() *big.Int {
	if m.ChainIDValue != nil {
		return m.ChainIDValue
	}
	return big.NewInt(1337)
}

func (m *MockLockSource) LatestBlock(ctx context.Context) (uint64, error) {
	if m.LatestBlockFunc != nil {
		return m.LatestBlockFunc(ctx)
	}
	return 0, nil
}

func (m *MockLockSource) LockEventsInRange(ctx context.Context, from, to uint64) ([]*ethereum.LockEvent, error) {
	if m.LockEventsInRangeFunc != nil {
		return m.LockEventsInRangeFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *MockLockSource) Nonce(ctx context.Context) (*big.Int, error) {
	if m.NonceFunc != nil {
		return m.NonceFunc(ctx)
	}
	return big.NewInt(0), nil
}

func (m *MockLockSource) LockedBalance(ctx context.Context) (*big.Int, error) {
	if m.LockedBalanceFunc != nil {
		return m.LockedBalanceFunc(ctx)
	}
	return big.NewInt(0), nil
}

// MockMintTarget is a mock implementation of MintTarget
type MockMintTarget struct {
	ChainIDValue            *big.Int
	Signer                  common.Address
	LatestBlockFunc         func(ctx context.Context) (uint64, error)
	IsProcessedFunc         func(ctx context.Context, id *big.Int) (bool, error)
	RelayerFunc             func(ctx context.Context) (common.Address, error)
	SubmitMintFunc          func(ctx context.Context, id *big.Int, to common.Address, amount *big.Int) (common.Hash, error)
	ResubmitMintFunc        func(ctx context.Context, id *big.Int, to common.Address, amount *big.Int, prev common.Hash) (common.Hash, error)
	WaitForConfirmationFunc func(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	MintedInRangeFunc       func(ctx context.Context, from, to uint64) ([]*ethereum.MintedEvent, error)
}

func (m *MockMintTarget) ChainID() *big.Int {
	if m.ChainIDValue != nil {
		return m.ChainIDValue
	}
	return big.NewInt(1338)
}

func (m *MockMintTarget) SignerAddress() common.Address {
	return m.Signer
}

func (m *MockMintTarget) LatestBlock(ctx context.Context) (uint64, error) {
	if m.LatestBlockFunc != nil {
		return m.LatestBlockFunc(ctx)
	}
	return 0, nil
}

func (m *MockMintTarget) IsProcessed(ctx context.Context, id *big.Int) (bool, error) {
	if m.IsProcessedFunc != nil {
		return m.IsProcessedFunc(ctx, id)
	}
	return false, nil
}

func (m *MockMintTarget) Relayer(ctx context.Context) (common.Address, error) {
	if m.RelayerFunc != nil {
		return m.RelayerFunc(ctx)
	}
	return m.Signer, nil
}

func (m *MockMintTarget) SubmitMint(ctx context.Context, id *big.Int, to common.Address, amount *big.Int) (common.Hash, error) {
	if m.SubmitMintFunc != nil {
		return m.SubmitMintFunc(ctx, id, to, amount)
	}
	return common.BigToHash(id), nil
}

func (m *MockMintTarget) ResubmitMint(ctx context.Context, id *big.Int, to common.Address, amount *big.Int, prev common.Hash) (common.Hash, error) {
	if m.ResubmitMintFunc != nil {
		return m.ResubmitMintFunc(ctx, id, to, amount, prev)
	}
	return m.SubmitMint(ctx, id, to, amount)
}

func (m *MockMintTarget) WaitForConfirmation(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if m.WaitForConfirmationFunc != nil {
		return m.WaitForConfirmationFunc(ctx, hash)
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, GasUsed: 50000}, nil
}

func (m *MockMintTarget) MintedInRange(ctx context.Context, from, to uint64) ([]*ethereum.MintedEvent, error) {
	if m.MintedInRangeFunc != nil {
		return m.MintedInRangeFunc(ctx, from, to)
	}
	return nil, nil
}

// recordingEmitter keeps every emitted record
type recordingEmitter struct {
	mu      sync.Mutex
	records []notify.Record
}

func (e *recordingEmitter) Emit(r notify.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, r)
}

func (e *recordingEmitter) types(id string) []notify.Type {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []notify.Type
	for _, r := range e.records {
		if r.ID == id {
			out = append(out, r.Type)
		}
	}
	return out
}

// fakeLockChain is an in-memory lock ledger with a settable head
type fakeLockChain struct {
	mu     sync.Mutex
	head   uint64
	events []*ethereum.LockEvent
}

func (f *fakeLockChain) lock(id int64, to common.Address, amount int64, block uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, &ethereum.LockEvent{
		ID:          big.NewInt(id),
		From:        common.HexToAddress("0xAAA"),
		To:          to,
		Amount:      big.NewInt(amount),
		BlockNumber: block,
		TxHash:      common.BigToHash(big.NewInt(id + 1000)),
	})
	if block > f.head {
		f.head = block
	}
}

func (f *fakeLockChain) setHead(h uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = h
}

func (f *fakeLockChain) source() *MockLockSource {
	return &MockLockSource{
		LatestBlockFunc: func(context.Context) (uint64, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.head, nil
		},
		LockEventsInRangeFunc: func(_ context.Context, from, to uint64) ([]*ethereum.LockEvent, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			var out []*ethereum.LockEvent
			for _, ev := range f.events {
				if ev.BlockNumber >= from && ev.BlockNumber <= to {
					out = append(out, ev)
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].BlockNumber < out[j].BlockNumber })
			return out, nil
		},
		NonceFunc: func(context.Context) (*big.Int, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			return big.NewInt(int64(len(f.events))), nil
		},
	}
}

// fakeMintChain enforces the mint ledger's replay rule and counts mints per id
type fakeMintChain struct {
	mu        sync.Mutex
	processed map[string]bool
	mints     map[string]int
	balances  map[common.Address]*big.Int
	sends     int

	// submitErr, when set, is consulted before every submission
	submitErr func(id *big.Int) error
}

func newFakeMintChain() *fakeMintChain {
	return &fakeMintChain{
		processed: make(map[string]bool),
		mints:     make(map[string]int),
		balances:  make(map[common.Address]*big.Int),
	}
}

func (f *fakeMintChain) mintCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mints[big.NewInt(id).String()]
}

func (f *fakeMintChain) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

func (f *fakeMintChain) balance(addr common.Address) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

func (f *fakeMintChain) target() *MockMintTarget {
	return &MockMintTarget{
		Signer: common.HexToAddress("0xbeef"),
		IsProcessedFunc: func(_ context.Context, id *big.Int) (bool, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.processed[id.String()], nil
		},
		SubmitMintFunc: func(_ context.Context, id *big.Int, to common.Address, amount *big.Int) (common.Hash, error) {
			if f.submitErr != nil {
				if err := f.submitErr(id); err != nil {
					return common.Hash{}, err
				}
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			f.sends++
			if f.processed[id.String()] {
				return common.Hash{}, &ethereum.ChainError{Kind: ethereum.KindReplay, Op: "estimate_gas", Reason: ethereum.ReplayRevertReason}
			}
			f.processed[id.String()] = true
			f.mints[id.String()]++
			bal, ok := f.balances[to]
			if !ok {
				bal = new(big.Int)
				f.balances[to] = bal
			}
			bal.Add(bal, amount)
			return common.BigToHash(big.NewInt(int64(f.sends))), nil
		},
	}
}
