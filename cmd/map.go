package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crestline-research/finmap/internal/model"
)

var (
	mapCompany string
	mapJSON    bool
)

var mapCmd = &cobra.Command{
	Use:   "map <file|dir>...",
	Short: "Show the label-to-target mapping for a dataset",
	Long: "Runs ingest and the greedy mapper only, then prints each assignment with its " +
		"confidence breakdown (base score plus tiebreak bonus). Use analyze for resolved " +
		"values and derivations.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		files, err := collectFiles(args)
		if err != nil {
			return err
		}

		company := mapCompany
		if company == "" {
			company = companyFromPath(args[0])
		}

		result, err := runPipeline(company, files)
		if err != nil {
			return err
		}

		assignments := result.Mapping.Assignments()
		if mapJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(assignments)
		}

		formatMapping(os.Stdout, assignments)
		fmt.Printf("\n%d of %d targets mapped over %d rows\n",
			result.Mapping.Len(), result.Registry.Len(), len(result.Dataset.Rows))
		return nil
	},
}

func init() {
	mapCmd.Flags().StringVar(&mapCompany, "company", "", "company name (default: derived from the first path)")
	mapCmd.Flags().BoolVar(&mapJSON, "json", false, "emit assignments as JSON")
	rootCmd.AddCommand(mapCmd)
}

// formatMapping writes assignments as an aligned table, highest confidence
// first (the mapper's assignment order).
func formatMapping(out io.Writer, assignments []model.Assignment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TARGET\tSOURCE LABEL\tSTMT\tCONF\tBASE\tBONUS\tNOTE")
	_, _ = fmt.Fprintln(w, "------\t------------\t----\t----\t----\t-----\t----")

	for _, a := range assignments {
		bonus := ""
		if a.Bonus != 0 {
			bonus = fmt.Sprintf("+%.3f", a.Bonus)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.3f\t%s\t%s\n",
			a.Target, a.SourceLabel, shortStmt(a.Statement), a.Confidence, a.Base, bonus, a.Note)
	}
	_ = w.Flush()
}

func shortStmt(s model.Statement) string {
	switch s {
	case model.BalanceSheet:
		return "BS"
	case model.ProfitLoss:
		return "PL"
	case model.CashFlow:
		return "CF"
	case model.Financial:
		return "FIN"
	}
	return string(s)
}
