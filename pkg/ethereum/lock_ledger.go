package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/chainsafe/lockmint-relayer/pkg/ethereum/contracts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// LockLedger reads the source chain contract that escrows tokens and emits
// Locked events.
type LockLedger struct {
	client   *Client
	address  common.Address
	contract *contracts.LockLedger
}

// NewLockLedger binds the lock ledger at address.
func NewLockLedger(client *Client, address common.Address) (*LockLedger, error) {
	contract, err := contracts.NewLockLedger(address, client.Backend())
	if err != nil {
		return nil, fmt.Errorf("failed to bind lock ledger: %w", err)
	}
	return &LockLedger{client: client, address: address, contract: contract}, nil
}

// Address returns the contract address
func (l *LockLedger) Address() common.Address {
	return l.address
}

// ChainID returns the source chain id
func (l *LockLedger) ChainID() *big.Int {
	return l.client.ChainID()
}

// LatestBlock returns the source chain head
func (l *LockLedger) LatestBlock(ctx context.Context) (uint64, error) {
	return l.client.LatestBlock(ctx)
}

// LockEventsInRange returns the Locked events in [from, to], ordered by
// (block, log index). Removed logs are skipped.
func (l *LockLedger) LockEventsInRange(ctx context.Context, from, to uint64) ([]*LockEvent, error) {
	var events []*LockEvent
	err := l.client.read(ctx, "filter_locked", func(ctx context.Context) error {
		events = events[:0]

		iter, err := l.contract.FilterLocked(&bind.FilterOpts{Start: from, End: &to, Context: ctx}, nil, nil, nil)
		if err != nil {
			return err
		}
		defer iter.Close()

		for iter.Next() {
			ev := iter.Event
			if ev.Raw.Removed {
				continue
			}
			events = append(events, &LockEvent{
				ID:          ev.Id,
				From:        ev.From,
				To:          ev.To,
				Amount:      ev.Amount,
				BlockNumber: ev.Raw.BlockNumber,
				LogIndex:    ev.Raw.Index,
				TxHash:      ev.Raw.TxHash,
			})
		}
		return iter.Error()
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})
	return events, nil
}

// Nonce returns the next lock id the contract will assign
func (l *LockLedger) Nonce(ctx context.Context) (*big.Int, error) {
	var nonce *big.Int
	err := l.client.read(ctx, "nonce", func(ctx context.Context) error {
		var err error
		nonce, err = l.contract.Nonce(&bind.CallOpts{Context: ctx})
		return err
	})
	return nonce, err
}

// LockedBalance returns the escrowed token balance
func (l *LockLedger) LockedBalance(ctx context.Context) (*big.Int, error) {
	var balance *big.Int
	err := l.client.read(ctx, "locked_balance", func(ctx context.Context) error {
		var err error
		balance, err = l.contract.LockedBalance(&bind.CallOpts{Context: ctx})
		return err
	})
	return balance, err
}

// Token returns the escrowed token address
func (l *LockLedger) Token(ctx context.Context) (common.Address, error) {
	var token common.Address
	err := l.client.read(ctx, "token", func(ctx context.Context) error {
		var err error
		token, err = l.contract.Token(&bind.CallOpts{Context: ctx})
		return err
	})
	return token, err
}
