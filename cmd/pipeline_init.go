package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/config"
	"github.com/crestline-research/finmap/internal/ingest"
	"github.com/crestline-research/finmap/internal/mapper"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
	"github.com/crestline-research/finmap/internal/store"
	"github.com/crestline-research/finmap/internal/waterfall"
)

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("cmd: unknown store driver %q", cfg.Store.Driver)
	}
}

// loadRegistry builds the target registry, merging the configured YAML
// overlay when one is set.
func loadRegistry() (*registry.Registry, error) {
	if cfg.Registry.OverlayPath != "" {
		return registry.LoadWithOverlay(cfg.Registry.OverlayPath)
	}
	return registry.Default()
}

// collectFiles reads export files from the given paths. Directories
// contribute their immediate regular files; ZIP bundles are expanded later by
// ingest. os.ReadDir order keeps the merge priority deterministic.
func collectFiles(paths []string) ([]ingest.File, error) {
	var files []ingest.File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, eris.Wrapf(err, "cmd: stat %s", p)
		}
		if !info.IsDir() {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, eris.Wrapf(err, "cmd: read %s", p)
			}
			files = append(files, ingest.File{Name: filepath.Base(p), Data: data})
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, eris.Wrapf(err, "cmd: read dir %s", p)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			full := filepath.Join(p, e.Name())
			data, err := os.ReadFile(full)
			if err != nil {
				return nil, eris.Wrapf(err, "cmd: read %s", full)
			}
			files = append(files, ingest.File{Name: e.Name(), Data: data})
		}
	}
	if len(files) == 0 {
		return nil, eris.New("cmd: no input files found")
	}
	return files, nil
}

// companyFromPath derives a default company name from an input path: the
// directory name for directories, the file stem otherwise.
func companyFromPath(p string) string {
	base := filepath.Base(filepath.Clean(p))
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// engineFingerprint serializes the active thresholds so a stored run records
// the exact configuration that produced it.
func engineFingerprint(e config.EngineConfig) string {
	b, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(b)
}

// runResult bundles everything one map-and-resolve pass produces.
type runResult struct {
	Registry   *registry.Registry
	Dataset    *model.Dataset
	Ingest     *ingest.Report
	Mapping    *model.Mapping
	Candidates []mapper.Candidate
	Table      *model.ResolutionTable
}

// runPipeline executes the full pass over a set of export files: ingest,
// greedy mapping, derivation waterfall.
func runPipeline(company string, files []ingest.File) (*runResult, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	ds, report, err := ingest.Load(company, files)
	if err != nil {
		return nil, err
	}
	for _, f := range report.Failures {
		zap.L().Warn("export file failed to parse", zap.String("company", company), zap.String("failure", f))
	}
	for _, w := range report.Warnings {
		zap.L().Warn("dataset integrity warning", zap.String("company", company), zap.String("warning", w))
	}

	m := mapper.New(cfg.Engine, reg)
	mapping := m.Map(ds)
	table := waterfall.NewResolver(cfg.Engine, reg, ds, mapping).ResolveAll()

	return &runResult{
		Registry:   reg,
		Dataset:    ds,
		Ingest:     report,
		Mapping:    mapping,
		Candidates: m.Candidates(ds),
		Table:      table,
	}, nil
}

// saveRun persists one completed run and returns its id.
func saveRun(ctx context.Context, st store.Store, r *runResult) (string, error) {
	run, mappings, resolutions := store.NewRunArtifacts(
		r.Dataset.Company,
		engineFingerprint(cfg.Engine),
		r.Registry.Len(),
		r.Dataset, r.Mapping, r.Table,
	)
	if err := st.SaveRun(ctx, run, mappings, resolutions); err != nil {
		return "", err
	}
	return run.ID, nil
}
