package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "greenwash-cli",
	Short: "Greenwashing risk analysis for corporate sustainability documents",
	Long:  "Analyzes corporate documents for greenwashing: hypothesis-driven document analysis, claim extraction, external validation against news coverage and the WikiRate registry, rubric-scored risk metrics, and a synthesized report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
