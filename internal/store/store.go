// Package store persists runs and their mapping/resolution children. The
// engine never requires a store; commands open one only when persistence is
// requested, and both backends expose the same interface.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/model"
)

// ErrNotFound is returned, unwrapped, by lookups that match nothing.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Company string `json:"company,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store is the persistence interface for mapping runs.
type Store interface {
	// SaveRun writes a run row and its mapping/resolution children.
	SaveRun(ctx context.Context, run *model.RunRecord, mappings []model.StoredMapping, resolutions []model.StoredResolution) error
	GetRun(ctx context.Context, runID string) (*model.RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error)
	LoadMappings(ctx context.Context, runID string) ([]model.StoredMapping, error)
	LoadResolutions(ctx context.Context, runID string) ([]model.StoredResolution, error)

	// Publication state keyed by run, so re-publishing updates the existing
	// tracker row instead of creating a duplicate.
	SavePublication(ctx context.Context, runID, pageID string) error
	GetPublication(ctx context.Context, runID string) (string, error)

	Migrate(ctx context.Context) error
	Close() error
}

// NewRunArtifacts converts one completed run into its persistence rows: a
// fresh-uuid run record, one mapping row per assignment, and one resolution
// row per (target, year) cell, unresolved cells included so the stored audit
// trail matches the live one.
func NewRunArtifacts(company, configJSON string, targetCount int, ds *model.Dataset, mapping *model.Mapping, table *model.ResolutionTable) (*model.RunRecord, []model.StoredMapping, []model.StoredResolution) {
	run := &model.RunRecord{
		ID:        uuid.New().String(),
		Company:   company,
		RowCount:  len(ds.Rows),
		Years:     table.Years,
		Mapped:    mapping.Len(),
		Unmapped:  targetCount - mapping.Len(),
		Config:    configJSON,
		CreatedAt: time.Now().UTC(),
	}

	assignments := mapping.Assignments()
	mappings := make([]model.StoredMapping, 0, len(assignments))
	for _, a := range assignments {
		mappings = append(mappings, model.StoredMapping{
			RunID:       run.ID,
			Target:      a.Target,
			SourceLabel: a.SourceLabel,
			Statement:   a.Statement,
			Confidence:  a.Confidence,
			Base:        a.Base,
			Bonus:       a.Bonus,
			Note:        a.Note,
		})
	}

	cells := table.All()
	resolutions := make([]model.StoredResolution, 0, len(cells))
	for _, v := range cells {
		resolutions = append(resolutions, model.StoredResolution{
			RunID:       run.ID,
			Target:      v.Target,
			Year:        v.Year,
			Value:       v.Value,
			Provenance:  v.Provenance,
			Explanation: v.Explanation,
		})
	}

	return run, mappings, resolutions
}
