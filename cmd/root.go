package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "finmap",
	Short: "Financial statement label mapping and derivation",
	Long: "Maps vendor statement exports (Capitaline-style CSV/XLSX/HTML) onto a canonical " +
		"metric registry, derives missing metrics through registered formulas and fallback " +
		"scans, and reports per-target provenance and confidence.",
	SilenceUsage:  true,
	SilenceErrors: true,
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
		fmt.Fprintln(os.Stderr, "Error: "+eris.ToString(err, false))
		os.Exit(1)
	}
}
