// Package cli implements catl1-hasher's command tree: "hash" drives a
// CATL v1 file through the trie core and reports per-ledger verification;
// "version" prints build information.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:     "catl1-hasher",
	Short:   "Stream a CATL v1 file through the SHAMap core and verify ledger hashes",
	Version: "0.1.0-dev",
}

// Execute runs the root command. Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
}
