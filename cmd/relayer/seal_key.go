package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/chainsafe/lockmint-relayer/pkg/keys"
)

var passphrase string

var sealKeyCmd = &cobra.Command{
	Use:   "seal-key",
	Short: "Encrypt a hex private key read from stdin for use as signer.sealed_key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if passphrase == "" {
			passphrase = os.Getenv("RELAYER_KEY_PASSPHRASE")
		}
		if passphrase == "" {
			return fmt.Errorf("--passphrase or RELAYER_KEY_PASSPHRASE is required")
		}

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read private key: %w", err)
		}
		raw := common.FromHex(strings.TrimSpace(line))
		key, err := crypto.ToECDSA(raw)
		if err != nil {
			return fmt.Errorf("invalid private key: %w", err)
		}

		sealed, err := keys.Seal(raw, passphrase)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "address: %s\n", crypto.PubkeyToAddress(key.PublicKey).Hex())
		fmt.Fprintln(cmd.OutOrStdout(), sealed)
		return nil
	},
}

func init() {
	sealKeyCmd.Flags().StringVar(&passphrase, "passphrase", "", "Passphrase used to seal the key")
}
