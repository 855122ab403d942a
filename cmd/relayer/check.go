package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/ethereum"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify chain connectivity and that the signer is the mint ledger's relayer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := config.NewLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		signer, err := ethereum.NewKeySignerFromConfig(&cfg.Signer)
		if err != nil {
			return err
		}

		lockClient, err := ethereum.Dial(ctx, &cfg.LockChain, nil, logger)
		if err != nil {
			return err
		}
		defer lockClient.Close()
		mintClient, err := ethereum.Dial(ctx, &cfg.MintChain, signer, logger)
		if err != nil {
			return err
		}
		defer mintClient.Close()

		lock, err := ethereum.NewLockLedger(lockClient, common.HexToAddress(cfg.LockChain.ContractAddress))
		if err != nil {
			return err
		}
		mint, err := ethereum.NewMintLedger(mintClient, common.HexToAddress(cfg.MintChain.ContractAddress))
		if err != nil {
			return err
		}

		nonce, nonceErr := lock.Nonce(ctx)
		balance, balanceErr := lock.LockedBalance(ctx)
		if err := multierr.Combine(nonceErr, balanceErr); err != nil {
			return fmt.Errorf("read lock ledger: %w", err)
		}
		logger.Info("Lock ledger reachable",
			zap.String("chain_id", lock.ChainID().String()),
			zap.String("contract", lock.Address().Hex()),
			zap.String("nonce", nonce.String()),
			zap.String("locked_balance", decimal.NewFromBigInt(balance, -18).String()))

		relayerAddr, err := mint.Relayer(ctx)
		if err != nil {
			return fmt.Errorf("read mint ledger relayer: %w", err)
		}
		if relayerAddr != signer.Address() {
			return fmt.Errorf("signer %s is not the mint ledger relayer %s", signer.Address().Hex(), relayerAddr.Hex())
		}
		logger.Info("Mint ledger reachable and signer authorized",
			zap.String("chain_id", mint.ChainID().String()),
			zap.String("contract", mint.Address().Hex()),
			zap.String("relayer", relayerAddr.Hex()))
		return nil
	},
}
