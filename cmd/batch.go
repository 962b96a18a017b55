package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crestline-research/finmap/internal/store"
)

var (
	batchConcurrency int
	batchLimit       int
)

var batchCmd = &cobra.Command{
	Use:   "batch <root-dir>",
	Short: "Process every company directory under a root",
	Long: "Each immediate subdirectory of the root is one company's export set. Datasets " +
		"run concurrently, each writing its own run row; one dataset's failure never " +
		"aborts the others.",
	Example: `  finmap batch exports/
  finmap batch exports/ --concurrency 8 --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("batch"); err != nil {
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

		dirs, err := companyDirs(args[0])
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentCompanies
		}

		summary, err := processBatch(ctx, st, dirs, batchLimit, concurrency)
		if err != nil {
			return err
		}

		if len(summary.Failures) > 0 {
			fmt.Fprintf(os.Stderr, "%d dataset(s) failed:\n", len(summary.Failures))
			for _, f := range summary.Failures {
				fmt.Fprintln(os.Stderr, "  "+f)
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent datasets (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of datasets to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// companyDirs lists the immediate subdirectories of root, one per company.
func companyDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: read batch root %s", root)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// batchSummary is the outcome of one batch pass.
type batchSummary struct {
	Succeeded int64
	Failed    int64
	Failures  []string
}

// processBatch runs each company directory through the full pipeline on its
// own goroutine, bounded by concurrency. Individual failures are collected,
// never propagated; only context cancellation aborts the batch.
func processBatch(ctx context.Context, st store.Store, dirs []string, limit, concurrency int) (*batchSummary, error) {
	summary := &batchSummary{}
	if len(dirs) == 0 {
		zap.L().Info("no company directories found")
		return summary, nil
	}

	if limit > 0 && len(dirs) > limit {
		dirs = dirs[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("companies", len(dirs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	var mu sync.Mutex
	var failures []string

	for _, dir := range dirs {
		dir := dir
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			company := companyFromPath(dir)
			log := zap.L().With(zap.String("company", company))

			runID, err := processDataset(gctx, st, dir, company)
			if err != nil {
				failed.Add(1)
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", company, err))
				mu.Unlock()
				log.Error("dataset failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("dataset complete", zap.String("run_id", runID))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "cmd: batch processing")
	}

	sort.Strings(failures)
	summary.Succeeded = succeeded.Load()
	summary.Failed = failed.Load()
	summary.Failures = failures

	zap.L().Info("batch complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
	)
	return summary, nil
}

// processDataset runs one company directory end to end and persists the run.
func processDataset(ctx context.Context, st store.Store, dir, company string) (string, error) {
	files, err := collectFiles([]string{dir})
	if err != nil {
		return "", err
	}
	result, err := runPipeline(company, files)
	if err != nil {
		return "", err
	}
	return saveRun(ctx, st, result)
}
