package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	v1 "github.com/sublimator/catalogue-tools-sub002/internal/catl/v1"
	"github.com/sublimator/catalogue-tools-sub002/internal/config"
	"github.com/sublimator/catalogue-tools-sub002/internal/logging"
)

var (
	hashLogLevel     string
	hashCollapseMode string
	hashMaxValueSize uint32
)

var hashCmd = &cobra.Command{
	Use:   "hash <file.catl>",
	Short: "Stream a CATL v1 file and verify every ledger's root hashes",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	hashCmd.Flags().StringVar(&hashLogLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	hashCmd.Flags().StringVar(&hashCollapseMode, "collapse", "", "leaves-only|leaves-and-inners (overrides config)")
	hashCmd.Flags().Uint32Var(&hashMaxValueSize, "max-value-size", 0, "value-size sanity ceiling in bytes (overrides config, 0 = use config)")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if hashLogLevel != "" {
		cfg.LogLevel = hashLogLevel
	}
	if hashCollapseMode != "" {
		cfg.CollapseMode = hashCollapseMode
	}
	if hashMaxValueSize != 0 {
		cfg.MaxValueSize = hashMaxValueSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sink, err := logging.NewZerologSink(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	opts, err := cfg.DriverOptions()
	if err != nil {
		return err
	}

	reader, err := v1.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer reader.Close()

	driver := v1.NewDriver(reader, opts, sink)
	out := cmd.OutOrStdout()

	for {
		result, err := driver.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(out, "PARSE_ERROR: %v\n", err)
			break
		}
		fmt.Fprintf(out, "ledger %d: %s\n", result.Sequence, result.Status)
	}

	summary := driver.Summary()
	fmt.Fprintf(out, "verified=%d mismatched=%d parse_errors=%d noop_removes=%d\n",
		summary.Verified, summary.Mismatched, summary.ParseErrs, summary.NoopRemoves)

	if !summary.Success() {
		os.Exit(1)
	}
	return nil
}
