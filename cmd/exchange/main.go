package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "exchange",
		Short:        "WELSH/STREET constant-product exchange",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("owner", "", "deployer principal (0x-prefixed hex)")
	flags.String("caller", "", "principal sending the call, defaults to owner")
	flags.Uint64("fee-bps", 100, "genesis swap fee in basis points")
	flags.Uint64("tax-share-bps", 5000, "share of the fee booked as tax, in basis points")
	flags.Uint64("welsh-supply", 10_000_000_000_000_000, "genesis WELSH supply minted to the owner")
	flags.Uint("decimals", 6, "token decimals")
	flags.String("state-file", "./data/state.json", "deployment snapshot file")
	flags.String("state-name", "default", "deployment name in Postgres")
	flags.String("journal", "./data/journal.jsonl", "event journal JSONL path")
	flags.String("pg-dsn", "", "Postgres DSN, replaces the state file when set")
	flags.Int("max-retries", 5, "maximum retry attempts for store calls")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newBootstrapCmd(),
		newSwapCmd(),
		newProvideLiquidityCmd(),
		newRemoveLiquidityCmd(),
		newLockLiquidityCmd(),
		newSetFeeCmd(),
		newStreetMintCmd(),
		newTransferCmd(),
		newInfoCmd(),
		newBalanceCmd(),
		newSupplyCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newSimulateCmd(),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
