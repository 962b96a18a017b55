package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
)

var (
	targetsStatement string
	targetsJSON      bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the canonical metric registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		defs := reg.Targets()
		if targetsStatement != "" {
			stmt := model.Statement(targetsStatement)
			if !stmt.Valid() {
				return fmt.Errorf("unknown statement %q", targetsStatement)
			}
			filtered := defs[:0]
			for _, d := range defs {
				if d.Statement == stmt {
					filtered = append(filtered, d)
				}
			}
			defs = filtered
		}

		if targetsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(defs)
		}

		formatTargets(os.Stdout, reg, defs)
		return nil
	},
}

func init() {
	targetsCmd.Flags().StringVar(&targetsStatement, "statement", "", "filter by statement (BalanceSheet, ProfitLoss, CashFlow, Financial)")
	targetsCmd.Flags().BoolVar(&targetsJSON, "json", false, "emit target definitions as JSON")
	rootCmd.AddCommand(targetsCmd)
}

// formatTargets writes one line per target with its matching surface: pattern
// and exclude counts, registered derivations, and the zero-suspect flag.
func formatTargets(out io.Writer, reg *registry.Registry, defs []model.TargetDefinition) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TARGET\tSTMT\tPATTERNS\tEXCLUDES\tDERIVE\tZERO-SUSPECT")
	_, _ = fmt.Fprintln(w, "------\t----\t--------\t--------\t------\t------------")

	for _, d := range defs {
		derive := ""
		if _, ok := reg.FormulaFor(d.Name); ok {
			derive = "formula"
		}
		if _, ok := reg.FallbackFor(d.Name); ok {
			if derive != "" {
				derive += "+fallback"
			} else {
				derive = "fallback"
			}
		}
		suspect := ""
		if d.ZeroSuspect {
			suspect = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			d.Name, shortStmt(d.Statement), len(d.Patterns), len(d.Exclude), derive, suspect)
	}
	_ = w.Flush()
}
