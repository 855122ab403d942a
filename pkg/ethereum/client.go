package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chainsafe/lockmint-relayer/pkg/config"
	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Backend is the subset of ethclient.Client the relayer depends on.
type Backend interface {
	bind.ContractBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Close()
}

// Client represents a connection to one EVM chain
type Client struct {
	config  *config.ChainConfig
	backend Backend
	chainID *big.Int
	signer  Signer
	logger  *zap.Logger

	maxGasPrice *big.Int

	// serializes nonce selection, signing and broadcast
	sendMu sync.Mutex
}

// Dial connects to cfg.RPCURL (http or ws) and resolves the chain id. signer
// may be nil for a chain that is only read from.
func Dial(ctx context.Context, cfg *config.ChainConfig, signer Signer, logger *zap.Logger) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()

	ec, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s rpc: %w", cfg.Name, err)
	}

	c, err := NewClient(ctx, cfg, ec, signer, logger)
	if err != nil {
		ec.Close()
		return nil, err
	}
	return c, nil
}

// NewClient creates a client on top of an existing backend.
func NewClient(ctx context.Context, cfg *config.ChainConfig, backend Backend, signer Signer, logger *zap.Logger) (*Client, error) {
	c := &Client{
		config:  cfg,
		backend: backend,
		signer:  signer,
		logger:  logger.With(zap.String("chain", cfg.Name)),
	}

	if cfg.MaxGasPrice != "" {
		maxGasPrice, ok := new(big.Int).SetString(cfg.MaxGasPrice, 10)
		if !ok {
			return nil, fmt.Errorf("invalid max gas price %q", cfg.MaxGasPrice)
		}
		c.maxGasPrice = maxGasPrice
	}

	var chainID *big.Int
	err := c.read(ctx, "chain_id", func(ctx context.Context) error {
		var err error
		chainID, err = backend.ChainID(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		return nil, fmt.Errorf("%s rpc reports chain id %s, configured %d", cfg.Name, chainID, cfg.ChainID)
	}
	c.chainID = chainID

	fields := []zap.Field{
		zap.String("chain_id", chainID.String()),
		zap.String("rpc_url", cfg.RPCURL),
	}
	if signer != nil {
		fields = append(fields, zap.String("signer", signer.Address().Hex()))
	}
	c.logger.Info("Connected to chain", fields...)

	return c, nil
}

// Close closes the underlying connection
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// ChainID returns the id reported by the node at dial time
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Name returns the configured chain name
func (c *Client) Name() string {
	return c.config.Name
}

// Backend exposes the raw backend for contract bindings
func (c *Client) Backend() Backend {
	return c.backend
}

// Config returns the chain configuration the client was built with
func (c *Client) Config() *config.ChainConfig {
	return c.config
}

// SignerAddress returns the signing account, or the zero address for a
// read-only client.
func (c *Client) SignerAddress() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

// LatestBlock returns the current head block number
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	var head uint64
	err := c.read(ctx, "latest_block", func(ctx context.Context) error {
		var err error
		head, err = c.backend.BlockNumber(ctx)
		return err
	})
	return head, err
}

// read runs a side-effect free call with a per-attempt timeout, retrying only
// transient failures.
func (c *Client) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()

			err := classify(op, fn(callCtx))
			if err != nil && !IsRetryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RPCRetries+1),
		retry.Delay(c.config.RPCRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("Retrying rpc call",
				zap.String("op", op),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
}

// SendTransaction estimates, signs and broadcasts req. A revert during gas
// estimation is reported as KindReverted before anything is broadcast.
func (c *Client) SendTransaction(ctx context.Context, req *TxRequest) (common.Hash, error) {
	if c.signer == nil {
		return common.Hash{}, errors.New("client has no signer")
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	from := c.signer.Address()
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	gasPrice, err := c.gasPrice(callCtx)
	if err != nil {
		return common.Hash{}, err
	}

	prev, err := c.pendingTx(callCtx, req.Replaces)
	if err != nil {
		return common.Hash{}, err
	}

	var nonce uint64
	if prev != nil {
		nonce = prev.Nonce()
		if bumped := bumpGasPrice(prev.GasPrice()); gasPrice.Cmp(bumped) < 0 {
			gasPrice = bumped
		}
		if c.maxGasPrice != nil && gasPrice.Cmp(c.maxGasPrice) > 0 {
			// a replacement must outbid the pending transaction; keep waiting on it
			c.logger.Warn("Replacement gas price exceeds maximum, keeping pending transaction",
				zap.String("tx_hash", prev.Hash().Hex()),
				zap.String("pending_gas_price", prev.GasPrice().String()),
				zap.String("max", c.maxGasPrice.String()))
			return prev.Hash(), nil
		}
	} else {
		nonce, err = c.backend.PendingNonceAt(callCtx, from)
		if err != nil {
			return common.Hash{}, classify("pending_nonce", err)
		}
	}

	to := req.To
	gasLimit, err := c.backend.EstimateGas(callCtx, geth.CallMsg{
		From:     from,
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     req.Data,
	})
	if err != nil {
		return common.Hash{}, classify("estimate_gas", err)
	}
	gasLimit += gasLimit / 5
	if c.config.GasLimit > 0 && gasLimit > c.config.GasLimit {
		gasLimit = c.config.GasLimit
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	})

	signed, err := c.signer.SignTx(callCtx, tx, c.chainID)
	if err != nil {
		return common.Hash{}, err
	}

	if err := c.backend.SendTransaction(callCtx, signed); err != nil {
		return common.Hash{}, classify("send_transaction", err)
	}

	c.logger.Debug("Transaction broadcast",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gasLimit),
		zap.String("gas_price", gasPrice.String()))

	return signed.Hash(), nil
}

// pendingTx returns the transaction hash refers to when it is still in the
// pool. Mined, dropped or unknown transactions yield nil.
func (c *Client) pendingTx(ctx context.Context, hash *common.Hash) (*types.Transaction, error) {
	if hash == nil {
		return nil, nil
	}
	tx, isPending, err := c.backend.TransactionByHash(ctx, *hash)
	if err != nil {
		if errors.Is(err, geth.NotFound) {
			return nil, nil
		}
		return nil, classify("transaction_by_hash", err)
	}
	if !isPending {
		return nil, nil
	}
	return tx, nil
}

// bumpGasPrice returns price raised by 12.5%, above the 10% replacement
// threshold of geth's transaction pool.
func bumpGasPrice(price *big.Int) *big.Int {
	bumped := new(big.Int).Rsh(price, 3)
	bumped.Add(bumped, price)
	return bumped.Add(bumped, big.NewInt(1))
}

func (c *Client) gasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classify("suggest_gas_price", err)
	}
	if c.maxGasPrice != nil && gasPrice.Cmp(c.maxGasPrice) > 0 {
		c.logger.Warn("Suggested gas price exceeds maximum",
			zap.String("suggested", gasPrice.String()),
			zap.String("max", c.maxGasPrice.String()))
		return new(big.Int).Set(c.maxGasPrice), nil
	}
	return gasPrice, nil
}

// WaitForConfirmation polls for the receipt of hash until it has minConf
// confirmations or the configured confirmation timeout elapses. A reverted
// receipt is replayed at its block to recover the revert reason.
func (c *Client) WaitForConfirmation(ctx context.Context, hash common.Hash, minConf uint64) (*types.Receipt, error) {
	if minConf == 0 {
		minConf = 1
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.config.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(c.config.ReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, done, err := c.checkReceipt(waitCtx, hash, minConf)
		if err != nil {
			return nil, err
		}
		if done {
			return receipt, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &ChainError{
				Kind: KindTimeout,
				Op:   "wait_confirmation",
				Err:  fmt.Errorf("transaction %s not confirmed after %s", hash.Hex(), c.config.ConfirmationTimeout),
			}
		case <-ticker.C:
		}
	}
}

// checkReceipt returns done=true once the receipt is final. Transient read
// failures are logged and reported as not done.
func (c *Client) checkReceipt(ctx context.Context, hash common.Hash, minConf uint64) (*types.Receipt, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	receipt, err := c.backend.TransactionReceipt(callCtx, hash)
	if errors.Is(err, geth.NotFound) {
		return nil, false, nil
	}
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Debug("Receipt lookup failed", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}
		return nil, false, nil
	}

	head, err := c.backend.BlockNumber(callCtx)
	if err != nil {
		return nil, false, nil
	}
	mined := receipt.BlockNumber.Uint64()
	if head < mined || head-mined+1 < minConf {
		return nil, false, nil
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, false, c.revertError(ctx, receipt)
	}
	return receipt, true, nil
}

// revertError re-executes a failed transaction at its block to decode the
// revert reason.
func (c *Client) revertError(ctx context.Context, receipt *types.Receipt) error {
	out := &ChainError{
		Kind: KindReverted,
		Op:   "wait_confirmation",
		Err:  fmt.Errorf("transaction %s reverted in block %s", receipt.TxHash.Hex(), receipt.BlockNumber),
	}

	tx, _, err := c.backend.TransactionByHash(ctx, receipt.TxHash)
	if err != nil {
		return out
	}
	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return out
	}

	_, err = c.backend.CallContract(ctx, geth.CallMsg{
		From:     from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}, receipt.BlockNumber)

	var ce *ChainError
	if errors.As(classify("replay_call", err), &ce) && ce.Kind == KindReverted {
		out.Reason = ce.Reason
	}
	return out
}
