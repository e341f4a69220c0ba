package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/panva/internal/util"
	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/db"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import a CSV/Newick dataset folder into the SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data")

			source, err := db.NewImportDir(args[0])
			if err != nil {
				return err
			}

			dbDir := filepath.Dir(databasePath(dataDir))
			if !util.DirExists(dbDir) {
				if err := os.MkdirAll(dbDir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dbDir, err)
				}
			}
			repo, err := db.Open(cmd.Context(), databasePath(dataDir))
			if err != nil {
				return err
			}
			defer repo.Close()

			stats, err := source.Run(cmd.Context(), repo)
			if err != nil {
				return err
			}
			logger.Info("Import finished",
				zap.String("source", args[0]),
				zap.Int("homologies", stats.Homologies),
				zap.Int("auxiliary_trees", stats.AuxiliaryTrees),
				zap.Strings("skipped", stats.Skipped),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d homology groups, %d auxiliary trees (%d skipped)\n",
				stats.Homologies, stats.AuxiliaryTrees, len(stats.Skipped))
			return nil
		},
	}
}
