package ethereum

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainsafe/lockmint-relayer/pkg/config"
	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testChainConfig() *config.ChainConfig {
	return &config.ChainConfig{
		Name:                "mint",
		RequestTimeout:      time.Second,
		RPCRetries:          2,
		RPCRetryDelay:       time.Millisecond,
		Confirmations:       1,
		ConfirmationTimeout: 200 * time.Millisecond,
		ReceiptPollInterval: 5 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, backend *mockBackend, key *ecdsa.PrivateKey) *Client {
	t.Helper()
	var signer Signer
	if key != nil {
		signer = NewKeySigner(key)
	}
	c, err := NewClient(context.Background(), testChainConfig(), backend, signer, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient_ChainIDMismatch(t *testing.T) {
	cfg := testChainConfig()
	cfg.ChainID = 1

	_, err := NewClient(context.Background(), cfg, &mockBackend{}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestClient_LatestBlockRetriesTransientFailures(t *testing.T) {
	var calls int32
	backend := &mockBackend{
		BlockNumberFunc: func(context.Context) (uint64, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return 0, context.DeadlineExceeded
			}
			return 99, nil
		},
	}
	c := newTestClient(t, backend, nil)

	head, err := c.LatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(99), head)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_LatestBlockGivesUp(t *testing.T) {
	var calls int32
	backend := &mockBackend{
		BlockNumberFunc: func(context.Context) (uint64, error) {
			atomic.AddInt32(&calls, 1)
			return 0, context.DeadlineExceeded
		},
	}
	c := newTestClient(t, backend, nil)

	_, err := c.LatestBlock(context.Background())
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ReadDoesNotRetryReverts(t *testing.T) {
	var calls int32
	backend := &mockBackend{
		BlockNumberFunc: func(context.Context) (uint64, error) {
			atomic.AddInt32(&calls, 1)
			return 0, newRevertError("nope")
		},
	}
	c := newTestClient(t, backend, nil)

	_, err := c.LatestBlock(context.Background())
	assert.Equal(t, KindReverted, KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_SendTransaction(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	to := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

	var sent *types.Transaction
	backend := &mockBackend{
		PendingNonceAtFunc: func(context.Context, common.Address) (uint64, error) { return 7, nil },
		EstimateGasFunc:    func(context.Context, geth.CallMsg) (uint64, error) { return 100_000, nil },
		SendTransactionFunc: func(_ context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}
	c := newTestClient(t, backend, key)

	hash, err := c.SendTransaction(context.Background(), &TxRequest{To: to, Data: []byte{0xde, 0xad}})
	require.NoError(t, err)
	require.NotNil(t, sent)

	assert.Equal(t, sent.Hash(), hash)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, uint64(120_000), sent.Gas())
	assert.Equal(t, to, *sent.To())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), sent)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), from)
}

func TestClient_SendTransactionCapsGas(t *testing.T) {
	key, _ := crypto.GenerateKey()

	var sent *types.Transaction
	backend := &mockBackend{
		SuggestGasPriceFunc: func(context.Context) (*big.Int, error) { return big.NewInt(500), nil },
		EstimateGasFunc:     func(context.Context, geth.CallMsg) (uint64, error) { return 100_000, nil },
		SendTransactionFunc: func(_ context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}
	cfg := testChainConfig()
	cfg.GasLimit = 110_000
	cfg.MaxGasPrice = "100"
	c, err := NewClient(context.Background(), cfg, backend, NewKeySigner(key), zap.NewNop())
	require.NoError(t, err)

	_, err = c.SendTransaction(context.Background(), &TxRequest{To: common.Address{1}})
	require.NoError(t, err)
	assert.Equal(t, uint64(110_000), sent.Gas())
	assert.Equal(t, big.NewInt(100), sent.GasPrice())
}

func TestClient_SendTransactionReplacesPendingTx(t *testing.T) {
	key, _ := crypto.GenerateKey()
	prev := types.NewTx(&types.LegacyTx{Nonce: 4, GasPrice: big.NewInt(2_000_000_000), Gas: 90_000})

	var sent *types.Transaction
	backend := &mockBackend{
		PendingNonceAtFunc: func(context.Context, common.Address) (uint64, error) { return 9, nil },
		EstimateGasFunc:    func(context.Context, geth.CallMsg) (uint64, error) { return 100_000, nil },
		TransactionByHashFunc: func(_ context.Context, hash common.Hash) (*types.Transaction, bool, error) {
			if hash != prev.Hash() {
				return nil, false, geth.NotFound
			}
			return prev, true, nil
		},
		SendTransactionFunc: func(_ context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}
	c := newTestClient(t, backend, key)

	replaces := prev.Hash()
	hash, err := c.SendTransaction(context.Background(), &TxRequest{To: common.Address{1}, Replaces: &replaces})
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, sent.Hash(), hash)
	assert.Equal(t, uint64(4), sent.Nonce(), "replacement reuses the pending nonce")
	assert.Equal(t, big.NewInt(2_250_000_001), sent.GasPrice())
}

func TestClient_SendTransactionKeepsPendingTxAboveMaxGasPrice(t *testing.T) {
	key, _ := crypto.GenerateKey()
	prev := types.NewTx(&types.LegacyTx{Nonce: 4, GasPrice: big.NewInt(100), Gas: 90_000})

	var broadcast bool
	backend := &mockBackend{
		EstimateGasFunc: func(context.Context, geth.CallMsg) (uint64, error) { return 100_000, nil },
		TransactionByHashFunc: func(context.Context, common.Hash) (*types.Transaction, bool, error) {
			return prev, true, nil
		},
		SendTransactionFunc: func(context.Context, *types.Transaction) error {
			broadcast = true
			return nil
		},
	}
	cfg := testChainConfig()
	cfg.MaxGasPrice = "105"
	c, err := NewClient(context.Background(), cfg, backend, NewKeySigner(key), zap.NewNop())
	require.NoError(t, err)

	replaces := prev.Hash()
	hash, err := c.SendTransaction(context.Background(), &TxRequest{To: common.Address{1}, Replaces: &replaces})
	require.NoError(t, err)
	assert.Equal(t, prev.Hash(), hash)
	assert.False(t, broadcast)
}

func TestClient_SendTransactionFreshNonceWhenReplacedTxGone(t *testing.T) {
	key, _ := crypto.GenerateKey()
	mined := types.NewTx(&types.LegacyTx{Nonce: 4, GasPrice: big.NewInt(100), Gas: 90_000})

	tests := []struct {
		name   string
		lookup func(context.Context, common.Hash) (*types.Transaction, bool, error)
	}{
		{
			name: "mined",
			lookup: func(context.Context, common.Hash) (*types.Transaction, bool, error) {
				return mined, false, nil
			},
		},
		{
			name: "dropped",
			lookup: func(context.Context, common.Hash) (*types.Transaction, bool, error) {
				return nil, false, geth.NotFound
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent *types.Transaction
			backend := &mockBackend{
				PendingNonceAtFunc:    func(context.Context, common.Address) (uint64, error) { return 9, nil },
				EstimateGasFunc:       func(context.Context, geth.CallMsg) (uint64, error) { return 100_000, nil },
				TransactionByHashFunc: tt.lookup,
				SendTransactionFunc: func(_ context.Context, tx *types.Transaction) error {
					sent = tx
					return nil
				},
			}
			c := newTestClient(t, backend, key)

			replaces := mined.Hash()
			_, err := c.SendTransaction(context.Background(), &TxRequest{To: common.Address{1}, Replaces: &replaces})
			require.NoError(t, err)
			require.NotNil(t, sent)
			assert.Equal(t, uint64(9), sent.Nonce())
		})
	}
}

func TestClient_SendTransactionWithoutSigner(t *testing.T) {
	c := newTestClient(t, &mockBackend{}, nil)
	_, err := c.SendTransaction(context.Background(), &TxRequest{})
	assert.Error(t, err)
}

func TestMintLedger_SubmitMintReplay(t *testing.T) {
	key, _ := crypto.GenerateKey()
	var broadcast bool
	backend := &mockBackend{
		EstimateGasFunc: func(context.Context, geth.CallMsg) (uint64, error) {
			return 0, newRevertError(ReplayRevertReason)
		},
		SendTransactionFunc: func(context.Context, *types.Transaction) error {
			broadcast = true
			return nil
		},
	}
	c := newTestClient(t, backend, key)
	ledger, err := NewMintLedger(c, common.Address{2})
	require.NoError(t, err)

	_, err = ledger.SubmitMint(context.Background(), big.NewInt(1), common.Address{3}, big.NewInt(10))
	assert.Equal(t, KindReplay, KindOf(err))
	assert.False(t, broadcast)
}

func TestClient_WaitForConfirmation(t *testing.T) {
	hash := common.HexToHash("0x01")
	var polls int32
	backend := &mockBackend{
		TransactionReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			if atomic.AddInt32(&polls, 1) < 3 {
				return nil, geth.NotFound
			}
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10), TxHash: hash}, nil
		},
		BlockNumberFunc: func(context.Context) (uint64, error) { return 12, nil },
	}
	c := newTestClient(t, backend, nil)

	receipt, err := c.WaitForConfirmation(context.Background(), hash, 3)
	require.NoError(t, err)
	assert.Equal(t, hash, receipt.TxHash)
}

func TestClient_WaitForConfirmationWaitsForDepth(t *testing.T) {
	backend := &mockBackend{
		TransactionReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10)}, nil
		},
		BlockNumberFunc: func(context.Context) (uint64, error) { return 10, nil },
	}
	c := newTestClient(t, backend, nil)

	_, err := c.WaitForConfirmation(context.Background(), common.Hash{}, 2)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestClient_WaitForConfirmationTimeout(t *testing.T) {
	c := newTestClient(t, &mockBackend{}, nil)

	_, err := c.WaitForConfirmation(context.Background(), common.Hash{}, 1)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, IsRetryable(err))
}

func TestClient_WaitForConfirmationCancelled(t *testing.T) {
	c := newTestClient(t, &mockBackend{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.WaitForConfirmation(ctx, common.Hash{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMintLedger_WaitForConfirmationRevertedReplay(t *testing.T) {
	key, _ := crypto.GenerateKey()
	chainID := big.NewInt(31337)
	to := common.Address{2}
	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce: 1, GasPrice: big.NewInt(1), Gas: 60_000, To: &to,
	}), types.LatestSignerForChainID(chainID), key)
	require.NoError(t, err)

	var replayBlock *big.Int
	backend := &mockBackend{
		TransactionReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(5), TxHash: tx.Hash()}, nil
		},
		BlockNumberFunc: func(context.Context) (uint64, error) { return 5, nil },
		TransactionByHashFunc: func(context.Context, common.Hash) (*types.Transaction, bool, error) {
			return tx, false, nil
		},
		CallContractFunc: func(_ context.Context, call geth.CallMsg, block *big.Int) ([]byte, error) {
			replayBlock = block
			assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), call.From)
			return nil, newRevertError(ReplayRevertReason)
		},
	}
	c := newTestClient(t, backend, key)
	ledger, err := NewMintLedger(c, to)
	require.NoError(t, err)

	_, err = ledger.WaitForConfirmation(context.Background(), tx.Hash())
	assert.Equal(t, KindReplay, KindOf(err))
	assert.Equal(t, big.NewInt(5), replayBlock)
}
