// Command relayer watches a lock ledger and mints the locked amounts on a
// second chain, exactly once per lock id.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "relayer",
	Short:         "Lock/mint bridge relayer",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "Path to configuration file")
	rootCmd.AddCommand(runCmd, migrateCmd, checkCmd, sealKeyCmd)

	// run is the default command
	rootCmd.Flags().BoolVar(&memoryStore, "memory", false, "Keep relay state in memory instead of PostgreSQL")
	rootCmd.RunE = runCmd.RunE
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
