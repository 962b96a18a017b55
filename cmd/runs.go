package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored mapping runs",
	Long:  "Commands for listing, viewing, and summarizing persisted runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		company, _ := cmd.Flags().GetString("company")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Company: company, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "cmd: runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run with its mappings and resolutions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "cmd: runs show")
		}
		mappings, err := st.LoadMappings(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "cmd: runs show")
		}
		resolutions, err := st.LoadResolutions(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "cmd: runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runDetail{Run: run, Mappings: mappings, Resolutions: resolutions})
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: 10000})
		if err != nil {
			return eris.Wrap(err, "cmd: runs stats")
		}

		formatRunStats(os.Stdout, computeRunStats(runs))
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("company", "", "filter by company name")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregates computed from a set of runs.
type runStats struct {
	Total         int
	Companies     int
	AvgMappedRate float64
}

func computeRunStats(runs []model.RunRecord) runStats {
	s := runStats{Total: len(runs)}

	companies := make(map[string]struct{})
	var rateSum float64
	var rateCount int

	for _, r := range runs {
		companies[r.Company] = struct{}{}
		if total := r.Mapped + r.Unmapped; total > 0 {
			rateSum += float64(r.Mapped) / float64(total)
			rateCount++
		}
	}

	s.Companies = len(companies)
	if rateCount > 0 {
		s.AvgMappedRate = rateSum / float64(rateCount)
	}
	return s
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.RunRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tROWS\tMAPPED\tYEARS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t------\t-----\t-------")

	for _, r := range runs {
		company := r.Company
		if len(company) > 30 {
			company = company[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\t%s\n",
			truncateID(r.ID),
			company,
			r.RowCount,
			r.Mapped, r.Mapped+r.Unmapped,
			yearSpan(r.Years),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Companies:\t%d\n", s.Companies)
	if s.Total > 0 {
		_, _ = fmt.Fprintf(w, "Avg mapped rate:\t%.1f%%\n", s.AvgMappedRate*100)
	}
	_ = w.Flush()
}

// yearSpan compacts a sorted fiscal-year list for display.
func yearSpan(years []string) string {
	switch len(years) {
	case 0:
		return "-"
	case 1:
		return years[0]
	default:
		return years[0] + ".." + years[len(years)-1]
	}
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
