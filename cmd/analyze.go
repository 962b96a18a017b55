package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/analysis"
	"github.com/crestline-research/finmap/internal/audit"
)

var (
	analyzeCompany  string
	analyzeFormat   string
	analyzeSave     bool
	analyzeAnalysis bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|dir>...",
	Short: "Map and resolve one company's statement exports",
	Long: "Runs the full pipeline over export files: ingest, label mapping, derivation " +
		"waterfall. Prints the audit report (per-target provenance, confidence, and " +
		"resolved values) and optionally the downstream ratio and score suite.",
	Example: `  finmap analyze exports/acme-mills/
  finmap analyze bs.csv pl.csv cf.csv --company "Acme Mills Ltd" --format json
  finmap analyze exports/acme-mills/ --save --analysis`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		files, err := collectFiles(args)
		if err != nil {
			return err
		}

		company := analyzeCompany
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

		var suite *analysis.Result
		if analyzeAnalysis {
			suite = analysis.Analyze(result.Dataset, result.Table)
		}

		if err := writeAnalyzeOutput(os.Stdout, analyzeFormat, report, suite); err != nil {
			return err
		}

		if analyzeSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			runID, err := saveRun(ctx, st, result)
			if err != nil {
				return err
			}
			zap.L().Info("run saved", zap.String("run_id", runID), zap.String("company", company))
			fmt.Fprintf(os.Stderr, "Saved run %s\n", runID)
		}

		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "company name (default: derived from the first path)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "output format: table, csv, json")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the run to the configured store")
	analyzeCmd.Flags().BoolVar(&analyzeAnalysis, "analysis", false, "include the ratio and score suite")
	rootCmd.AddCommand(analyzeCmd)
}

// writeAnalyzeOutput renders the audit report in the requested format. The
// analysis suite, when present, nests alongside the report in JSON output and
// prints as a compact score block after the table otherwise.
func writeAnalyzeOutput(w io.Writer, format string, report *audit.Report, suite *analysis.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if suite != nil {
			return enc.Encode(struct {
				Audit    *audit.Report    `json:"audit"`
				Analysis *analysis.Result `json:"analysis"`
			}{report, suite})
		}
		return enc.Encode(report)
	case "csv":
		return report.WriteCSV(w)
	case "table":
		if err := report.WriteTable(w); err != nil {
			return err
		}
		if suite != nil {
			writeScoreSummary(w, suite)
		}
		return nil
	default:
		return eris.Errorf("cmd: unknown format %q", format)
	}
}

// writeScoreSummary prints the latest year's headline scores.
func writeScoreSummary(w io.Writer, suite *analysis.Result) {
	if len(suite.Years) == 0 {
		return
	}
	latest := suite.Years[len(suite.Years)-1]

	fmt.Fprintf(w, "\nScores (FY %s)\n", latest)
	if z, ok := suite.Altman[latest]; ok {
		fmt.Fprintf(w, "  Altman Z:    %.2f (%s)\n", z.Score, z.Zone)
	}
	if f, ok := suite.Piotroski[latest]; ok {
		fmt.Fprintf(w, "  Piotroski F: %d/%d\n", f.Score, f.Max)
	}
	if suite.Recast != nil {
		// Recast ratios are stored in percent.
		for _, r := range suite.Recast.Ratios {
			if r.Year == latest && r.RNOA != nil {
				fmt.Fprintf(w, "  RNOA:        %.1f%%\n", *r.RNOA)
			}
		}
	}
}
