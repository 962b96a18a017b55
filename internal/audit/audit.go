// Package audit assembles the per-run audit view: one line per registry
// target with its provenance, feeding source row, confidence, and per-year
// values, plus the unmapped-target and unused-row sections reviewers work
// from. The report is a pure function of the core's outputs; building it
// performs no I/O and touches no state.
package audit

import (
	"github.com/crestline-research/finmap/internal/mapper"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
)

// YearCell is one (target, year) outcome. Value is nil when the year did not
// resolve; Provenance then says unresolved rather than defaulting the cell to
// zero.
type YearCell struct {
	Year       string           `json:"year"`
	Value      *float64         `json:"value,omitempty"`
	Provenance model.Provenance `json:"provenance"`
}

// TargetLine is the audit line for one registry target.
type TargetLine struct {
	Target      string           `json:"target"`
	Statement   model.Statement  `json:"statement"`
	Provenance  model.Provenance `json:"provenance"`
	SourceLabel string           `json:"source_label,omitempty"`
	Confidence  float64          `json:"confidence,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	Cells       []YearCell       `json:"cells"`
}

// ProvMixed marks a target whose years resolved through different waterfall
// steps, e.g. mapped where the export reported the line and derived where it
// was blank.
const ProvMixed model.Provenance = "mixed"

// UnmappedTarget is one registry target no source row fed, with the nearest
// miss recorded so a reviewer can see how close the mapper came.
type UnmappedTarget struct {
	Target    string          `json:"target"`
	Statement model.Statement `json:"statement"`
	BestLabel string          `json:"best_label,omitempty"`
	BestScore float64         `json:"best_score,omitempty"`
	Reason    string          `json:"reason"`
}

// UnusedRow is one source row no assignment consumed. BestTarget names the
// target it scored highest against, when it scored at all.
type UnusedRow struct {
	RowIndex   int             `json:"row_index"`
	Label      string          `json:"label"`
	Statement  model.Statement `json:"statement"`
	BestTarget string          `json:"best_target,omitempty"`
	BestScore  float64         `json:"best_score,omitempty"`
}

// Coverage summarizes how much of the registry and the dataset the run
// touched.
type Coverage struct {
	Targets        int `json:"targets"`
	Mapped         int `json:"mapped"`
	WithCandidates int `json:"with_candidates"`
	Resolved       int `json:"resolved"` // targets with at least one resolved year
	Rows           int `json:"rows"`
	RowsUsed       int `json:"rows_used"`

	// MissingCritical lists registry.CriticalTargets with no resolved year.
	// A dataset flagged here cannot feed the downstream models.
	MissingCritical []string `json:"missing_critical,omitempty"`
}

// Report is the full audit view for one run.
type Report struct {
	Company  string                   `json:"company"`
	Years    []string                 `json:"years"`
	Lines    []TargetLine             `json:"lines"`
	Unmapped []UnmappedTarget         `json:"unmapped,omitempty"`
	Unused   []UnusedRow              `json:"unused_rows,omitempty"`
	Coverage Coverage                 `json:"coverage"`
	ByProv   map[model.Provenance]int `json:"by_provenance"`
}

// Input carries everything the builder reads. Candidates is the mapper's
// pre-assignment candidate list; it feeds the nearest-miss columns and may be
// nil, in which case those columns stay empty.
type Input struct {
	Dataset       *model.Dataset
	Registry      *registry.Registry
	Mapping       *model.Mapping
	Table         *model.ResolutionTable
	Candidates    []mapper.Candidate
	MinConfidence float64
}

// Build assembles the report. Lines follow registry order; unused rows follow
// dataset order.
func Build(in Input) *Report {
	r := &Report{
		Company: in.Dataset.Company,
		Years:   in.Table.Years,
		ByProv:  in.Table.CountByProvenance(),
	}

	bestByTarget, bestByRow := bestCandidates(in.Candidates)
	resolvedTargets := make(map[string]bool)

	for _, def := range in.Registry.Targets() {
		line := TargetLine{Target: def.Name, Statement: def.Statement}

		if a, ok := in.Mapping.ForTarget(def.Name); ok {
			line.SourceLabel = a.SourceLabel
			line.Confidence = a.Confidence
		}

		resolved := 0
		for _, year := range r.Years {
			cell := YearCell{Year: year, Provenance: model.ProvUnresolved}
			if v, ok := in.Table.Get(def.Name, year); ok {
				cell.Provenance = v.Provenance
				if v.Resolved() {
					val := v.Value
					cell.Value = &val
					resolved++
				}
				// The latest year's explanation stands for the line; cells
				// keep only provenance to stay compact.
				line.Explanation = v.Explanation
				line.Provenance = mergeProvenance(line.Provenance, v.Provenance)
			}
			line.Cells = append(line.Cells, cell)
		}
		if line.Provenance == "" {
			line.Provenance = model.ProvUnresolved
		}

		r.Lines = append(r.Lines, line)
		r.Coverage.Targets++
		if line.SourceLabel != "" {
			r.Coverage.Mapped++
		} else {
			r.Unmapped = append(r.Unmapped, unmappedEntry(def, bestByTarget[def.Name], in))
		}
		if _, ok := bestByTarget[def.Name]; ok {
			r.Coverage.WithCandidates++
		}
		if resolved > 0 {
			r.Coverage.Resolved++
			resolvedTargets[def.Name] = true
		}
	}

	for _, name := range registry.CriticalTargets {
		if _, ok := in.Registry.ByName(name); !ok {
			continue
		}
		if !resolvedTargets[name] {
			r.Coverage.MissingCritical = append(r.Coverage.MissingCritical, name)
		}
	}

	r.Coverage.Rows = len(in.Dataset.Rows)
	for i := range in.Dataset.Rows {
		if _, ok := in.Mapping.ForRow(i); ok {
			r.Coverage.RowsUsed++
			continue
		}
		u := UnusedRow{
			RowIndex:  i,
			Label:     in.Dataset.Rows[i].Label,
			Statement: in.Dataset.Rows[i].Statement,
		}
		if c, ok := bestByRow[i]; ok {
			u.BestTarget = c.Target
			u.BestScore = c.Final
		}
		r.Unused = append(r.Unused, u)
	}

	return r
}

// bestCandidates indexes the strongest candidate per target and per row.
func bestCandidates(cands []mapper.Candidate) (map[string]mapper.Candidate, map[int]mapper.Candidate) {
	byTarget := make(map[string]mapper.Candidate)
	byRow := make(map[int]mapper.Candidate)
	for _, c := range cands {
		if cur, ok := byTarget[c.Target]; !ok || c.Final > cur.Final {
			byTarget[c.Target] = c
		}
		if cur, ok := byRow[c.RowIndex]; !ok || c.Final > cur.Final {
			byRow[c.RowIndex] = c
		}
	}
	return byTarget, byRow
}

// unmappedEntry explains why a target went unmapped: no row scored at all,
// the best score fell short, or the best row was assigned to another target
// first.
func unmappedEntry(def model.TargetDefinition, best mapper.Candidate, in Input) UnmappedTarget {
	u := UnmappedTarget{Target: def.Name, Statement: def.Statement}
	switch {
	case best.Target == "":
		u.Reason = "no candidate row"
	case best.Final < in.MinConfidence:
		u.BestLabel = best.Label
		u.BestScore = best.Final
		u.Reason = "best candidate below threshold"
	default:
		u.BestLabel = best.Label
		u.BestScore = best.Final
		u.Reason = "candidate row assigned elsewhere"
		if a, ok := in.Mapping.ForRow(best.RowIndex); ok {
			u.Reason = "candidate row assigned to " + a.Target
		}
	}
	return u
}

func mergeProvenance(current, next model.Provenance) model.Provenance {
	if next == model.ProvUnresolved {
		return current
	}
	switch current {
	case "", model.ProvUnresolved:
		return next
	case next:
		return current
	default:
		return ProvMixed
	}
}
