package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yumyai/panva/internal/util"
	"github.com/yumyai/panva/logger"
)

const VERSION = "0.1.0"

// dotenvErr is reported once the logger is up.
var dotenvErr error

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "panva",
		Short:         "Homology group alignment explorer",
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			if err := logger.InitLogger(logger.ParseLevel(level)); err != nil {
				return err
			}
			if dotenvErr != nil {
				logger.Debug("No .env found, using local environment")
			}
			return nil
		},
	}
	root.PersistentFlags().String("data", util.Getenv("PANVA_DATA", "./data"), "data directory holding db/panva.db")
	root.PersistentFlags().String("log-level", util.Getenv("PANVA_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newImportCmd())
	return root
}

func main() {
	// Load env before the flags take their defaults from it.
	dotenvErr = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync() // Make sure that the buffered is flushed.
}
