package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/analysis"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/resilience"
	"github.com/crestline-research/finmap/internal/store"
	"github.com/crestline-research/finmap/pkg/notion"
)

var publishReindex bool

var publishCmd = &cobra.Command{
	Use:   "publish <run-id>",
	Short: "Push a run summary to the Notion tracker",
	Long: "Publishes one stored run as a row in the research tracker database: coverage " +
		"counts by provenance plus the headline Altman and Piotroski scores. Re-publishing " +
		"updates the existing row. With --reindex, rebuilds the local publication table " +
		"from the tracker instead.",
	Example: `  finmap publish 4f3a2b1c-...
  finmap publish --reindex`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("publish"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		client := notion.NewClient(cfg.Notion.Token)

		if publishReindex {
			return reindexPublications(ctx, st, client, cfg.Notion.RunDB)
		}

		if len(args) != 1 {
			return fmt.Errorf("run-id argument is required unless --reindex is set")
		}
		return publishRun(ctx, st, client, cfg.Notion.RunDB, args[0])
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishReindex, "reindex", false, "rebuild the publication table from the tracker")
	rootCmd.AddCommand(publishCmd)
}

// publishRun loads a stored run, rebuilds its summary, and creates or updates
// the tracker row. The page id is remembered so the next publish updates in
// place; when local state is missing, the tracker itself is searched before
// creating a duplicate.
func publishRun(ctx context.Context, st store.Store, client notion.Client, dbID, runID string) error {
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	resolutions, err := st.LoadResolutions(ctx, runID)
	if err != nil {
		return err
	}

	summary := buildRunSummary(run, resolutions)

	pageID, err := st.GetPublication(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		pageID, err = notion.FindPageByRunID(ctx, client, dbID, runID)
	}
	if err != nil {
		return err
	}

	var created bool
	retry := resilience.RetryConfig{
		OnRetry: resilience.RetryLogger("notion", "publish run"),
	}
	err = resilience.Do(ctx, retry, func(ctx context.Context) error {
		var pubErr error
		pageID, created, pubErr = notion.PublishRun(ctx, client, dbID, pageID, summary)
		return pubErr
	})
	if err != nil {
		return err
	}

	if err := st.SavePublication(ctx, runID, pageID); err != nil {
		return err
	}

	action := "updated"
	if created {
		action = "created"
	}
	fmt.Printf("Run %s: tracker row %s (%s)\n", truncateID(runID), action, pageID)
	return nil
}

// buildRunSummary reconstructs the resolution table from stored rows and
// derives the tracker fields: provenance counts, coverage, and the latest
// year's scores.
func buildRunSummary(run *model.RunRecord, resolutions []model.StoredResolution) notion.RunSummary {
	var targets []string
	seen := make(map[string]struct{})
	for _, res := range resolutions {
		if _, ok := seen[res.Target]; !ok {
			seen[res.Target] = struct{}{}
			targets = append(targets, res.Target)
		}
	}

	table := model.NewResolutionTable(targets, run.Years)
	for _, res := range resolutions {
		table.Put(model.ResolvedValue{
			Target:      res.Target,
			Year:        res.Year,
			Value:       res.Value,
			Provenance:  res.Provenance,
			Explanation: res.Explanation,
		})
	}

	counts := table.CountByProvenance()
	summary := notion.RunSummary{
		RunID:      run.ID,
		Company:    run.Company,
		Years:      run.Years,
		RowCount:   run.RowCount,
		Mapped:     counts[model.ProvMapped],
		Derived:    counts[model.ProvDerived],
		Fallback:   counts[model.ProvFallback],
		Unresolved: counts[model.ProvUnresolved],
		CreatedAt:  run.CreatedAt,
	}

	cells := len(targets) * len(run.Years)
	if cells > 0 {
		summary.Coverage = float64(cells-counts[model.ProvUnresolved]) / float64(cells)
	}

	if len(run.Years) > 0 {
		latest := run.Years[len(run.Years)-1]
		if z, ok := analysis.ComputeAltman(table)[latest]; ok {
			summary.AltmanZone = z.Zone
		}
		if f, ok := analysis.ComputePiotroski(table)[latest]; ok {
			score := f.Score
			summary.Piotroski = &score
		}
	}

	return summary
}

// reindexPublications rebuilds the local run-to-page index from the tracker.
// Tracker rows for runs this store does not hold are skipped.
func reindexPublications(ctx context.Context, st store.Store, client notion.Client, dbID string) error {
	pages, err := notion.RunPages(ctx, client, dbID)
	if err != nil {
		return err
	}

	var restored, skipped int
	for runID, pageID := range pages {
		if _, err := st.GetRun(ctx, runID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				skipped++
				continue
			}
			return err
		}
		if err := st.SavePublication(ctx, runID, pageID); err != nil {
			return err
		}
		restored++
	}

	zap.L().Info("publications reindexed",
		zap.Int("restored", restored),
		zap.Int("skipped", skipped),
	)
	fmt.Printf("Reindexed %d publication(s), skipped %d unknown run(s)\n", restored, skipped)
	return nil
}
