package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crestline-research/finmap/internal/audit"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
)

var (
	coverageCompany string
	coverageJSON    bool
)

var coverageCmd = &cobra.Command{
	Use:   "coverage [file|dir]...",
	Short: "Report registry and dataset coverage",
	Long: "Without arguments, summarizes the static registry: targets per statement and " +
		"how many carry formulas, fallback rules, and tiebreaks. With export files, runs " +
		"the pipeline and reports how much of the registry the dataset actually fills.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		if len(args) == 0 {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			cov := computeRegistryCoverage(reg)
			if coverageJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cov)
			}
			formatRegistryCoverage(os.Stdout, cov)
			return nil
		}

		files, err := collectFiles(args)
		if err != nil {
			return err
		}
		company := coverageCompany
		if company == "" {
			company = companyFromPath(args[0])
		}

		result, err := runPipeline(company, files)
		if err != nil {
			return err
		}
		report := audit.Build(audit.Input{
			Dataset:       result.Dataset,
			Registry:      result.Registry,
			Mapping:       result.Mapping,
			Table:         result.Table,
			Candidates:    result.Candidates,
			MinConfidence: cfg.Engine.MinConfidence,
		})

		if coverageJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Company  string                   `json:"company"`
				Coverage audit.Coverage           `json:"coverage"`
				ByProv   map[model.Provenance]int `json:"by_provenance"`
			}{company, report.Coverage, report.ByProv})
		}

		formatDatasetCoverage(os.Stdout, company, report)
		return nil
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageCompany, "company", "", "company name (default: derived from the first path)")
	coverageCmd.Flags().BoolVar(&coverageJSON, "json", false, "emit coverage as JSON")
	rootCmd.AddCommand(coverageCmd)
}

// registryCoverage summarizes the static target registry.
type registryCoverage struct {
	Targets      int            `json:"targets"`
	ByStatement  map[string]int `json:"by_statement"`
	WithFormula  int            `json:"with_formula"`
	WithFallback int            `json:"with_fallback"`
	WithTiebreak int            `json:"with_tiebreak"`
	ZeroSuspect  int            `json:"zero_suspect"`
}

func computeRegistryCoverage(reg *registry.Registry) registryCoverage {
	cov := registryCoverage{
		Targets:     reg.Len(),
		ByStatement: make(map[string]int),
	}
	for _, def := range reg.Targets() {
		cov.ByStatement[string(def.Statement)]++
		if _, ok := reg.FormulaFor(def.Name); ok {
			cov.WithFormula++
		}
		if _, ok := reg.FallbackFor(def.Name); ok {
			cov.WithFallback++
		}
		if len(reg.TiebreaksFor(def.Name)) > 0 {
			cov.WithTiebreak++
		}
		if def.ZeroSuspect {
			cov.ZeroSuspect++
		}
	}
	return cov
}

func formatRegistryCoverage(out io.Writer, cov registryCoverage) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Targets:\t%d\n", cov.Targets)
	for _, stmt := range []model.Statement{model.BalanceSheet, model.ProfitLoss, model.CashFlow, model.Financial} {
		if n := cov.ByStatement[string(stmt)]; n > 0 {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", stmt, n)
		}
	}
	_, _ = fmt.Fprintf(w, "With formula:\t%d\n", cov.WithFormula)
	_, _ = fmt.Fprintf(w, "With fallback:\t%d\n", cov.WithFallback)
	_, _ = fmt.Fprintf(w, "With tiebreak:\t%d\n", cov.WithTiebreak)
	_, _ = fmt.Fprintf(w, "Zero-suspect:\t%d\n", cov.ZeroSuspect)
	_ = w.Flush()
}

func formatDatasetCoverage(out io.Writer, company string, report *audit.Report) {
	cov := report.Coverage
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Coverage for %s\n", company)
	_, _ = fmt.Fprintf(w, "  Targets:\t%d\n", cov.Targets)
	_, _ = fmt.Fprintf(w, "  Mapped:\t%d\n", cov.Mapped)
	_, _ = fmt.Fprintf(w, "  With candidates:\t%d\n", cov.WithCandidates)
	_, _ = fmt.Fprintf(w, "  Resolved:\t%d\n", cov.Resolved)
	_, _ = fmt.Fprintf(w, "  Rows used:\t%d / %d\n", cov.RowsUsed, cov.Rows)
	_, _ = fmt.Fprintln(w, "By provenance")
	for _, p := range []model.Provenance{model.ProvMapped, model.ProvDerived, model.ProvFallback, model.ProvUnresolved} {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", p, report.ByProv[p])
	}
	if len(cov.MissingCritical) > 0 {
		_, _ = fmt.Fprintf(w, "Missing critical:\t%s\n", strings.Join(cov.MissingCritical, ", "))
	}
	_ = w.Flush()
}
