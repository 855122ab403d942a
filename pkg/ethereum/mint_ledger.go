package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainsafe/lockmint-relayer/pkg/ethereum/contracts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MintLedger is the destination chain contract that mints against lock ids
// exactly once.
type MintLedger struct {
	client   *Client
	address  common.Address
	contract *contracts.MintLedger
	abi      *abi.ABI
}

// NewMintLedger binds the mint ledger at address.
func NewMintLedger(client *Client, address common.Address) (*MintLedger, error) {
	contract, err := contracts.NewMintLedger(address, client.Backend())
	if err != nil {
		return nil, fmt.Errorf("failed to bind mint ledger: %w", err)
	}
	parsed, err := contracts.MintLedgerMetaData.GetAbi()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mint ledger abi: %w", err)
	}
	return &MintLedger{client: client, address: address, contract: contract, abi: parsed}, nil
}

// Address returns the contract address
func (m *MintLedger) Address() common.Address {
	return m.address
}

// ChainID returns the destination chain id
func (m *MintLedger) ChainID() *big.Int {
	return m.client.ChainID()
}

// SignerAddress returns the account submitting mints
func (m *MintLedger) SignerAddress() common.Address {
	return m.client.SignerAddress()
}

// LatestBlock returns the destination chain head
func (m *MintLedger) LatestBlock(ctx context.Context) (uint64, error) {
	return m.client.LatestBlock(ctx)
}

// IsProcessed reports whether id has already been minted
func (m *MintLedger) IsProcessed(ctx context.Context, id *big.Int) (bool, error) {
	var processed bool
	err := m.client.read(ctx, "processed", func(ctx context.Context) error {
		var err error
		processed, err = m.contract.Processed(&bind.CallOpts{Context: ctx}, id)
		return err
	})
	return processed, err
}

// Relayer returns the account the contract accepts mints from
func (m *MintLedger) Relayer(ctx context.Context) (common.Address, error) {
	var relayer common.Address
	err := m.client.read(ctx, "relayer", func(ctx context.Context) error {
		var err error
		relayer, err = m.contract.Relayer(&bind.CallOpts{Context: ctx})
		return err
	})
	return relayer, err
}

// Token returns the minted token address
func (m *MintLedger) Token(ctx context.Context) (common.Address, error) {
	var token common.Address
	err := m.client.read(ctx, "token", func(ctx context.Context) error {
		var err error
		token, err = m.contract.Token(&bind.CallOpts{Context: ctx})
		return err
	})
	return token, err
}

// SubmitMint broadcasts mintRemote(id, to, amount). A revert during estimation
// carrying the replay reason is returned as KindReplay.
func (m *MintLedger) SubmitMint(ctx context.Context, id *big.Int, to common.Address, amount *big.Int) (common.Hash, error) {
	data, err := m.abi.Pack("mintRemote", id, to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack mintRemote: %w", err)
	}
	hash, err := m.client.SendTransaction(ctx, &TxRequest{To: m.address, Data: data})
	return hash, asReplay(err)
}

// ResubmitMint broadcasts mintRemote(id, to, amount) again after an earlier
// attempt prev went unconfirmed. While prev is still pending it is replaced
// at the same nonce.
func (m *MintLedger) ResubmitMint(ctx context.Context, id *big.Int, to common.Address, amount *big.Int, prev common.Hash) (common.Hash, error) {
	data, err := m.abi.Pack("mintRemote", id, to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack mintRemote: %w", err)
	}
	hash, err := m.client.SendTransaction(ctx, &TxRequest{To: m.address, Data: data, Replaces: &prev})
	return hash, asReplay(err)
}

// WaitForConfirmation waits for the configured number of confirmations of a
// mint transaction.
func (m *MintLedger) WaitForConfirmation(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := m.client.WaitForConfirmation(ctx, hash, m.client.Config().Confirmations)
	return receipt, asReplay(err)
}

// MintedInRange returns Minted events in [from, to]
func (m *MintLedger) MintedInRange(ctx context.Context, from, to uint64) ([]*MintedEvent, error) {
	var events []*MintedEvent
	err := m.client.read(ctx, "filter_minted", func(ctx context.Context) error {
		events = events[:0]

		iter, err := m.contract.FilterMinted(&bind.FilterOpts{Start: from, End: &to, Context: ctx}, nil, nil)
		if err != nil {
			return err
		}
		defer iter.Close()

		for iter.Next() {
			ev := iter.Event
			if ev.Raw.Removed {
				continue
			}
			events = append(events, &MintedEvent{
				ID:          ev.Id,
				To:          ev.To,
				Amount:      ev.Amount,
				BlockNumber: ev.Raw.BlockNumber,
				TxHash:      ev.Raw.TxHash,
			})
		}
		return iter.Error()
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
