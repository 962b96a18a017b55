package mapper

import (
	"sort"

	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/config"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/normalize"
	"github.com/crestline-research/finmap/internal/registry"
	"github.com/crestline-research/finmap/internal/scorer"
)

// Candidate is one scored (row, target) pair under consideration.
type Candidate struct {
	RowIndex int     `json:"row_index"`
	Target   string  `json:"target"`
	Label    string  `json:"label"` // normalized
	Base     float64 `json:"base"`
	Bonus    float64 `json:"bonus,omitempty"`
	Final    float64 `json:"final"`
	Rule     string  `json:"rule"`
	Pattern  string  `json:"pattern"`
	Priority int     `json:"priority"`
	Note     string  `json:"note,omitempty"`
}

// Mapper performs the greedy injective assignment of source rows to targets.
type Mapper struct {
	cfg config.EngineConfig
	reg *registry.Registry
	sc  *scorer.Scorer
}

// New creates a Mapper over the given registry and thresholds.
func New(cfg config.EngineConfig, reg *registry.Registry) *Mapper {
	return &Mapper{cfg: cfg, reg: reg, sc: scorer.New(cfg)}
}

// Map assigns dataset rows to targets in descending final-score order. Each
// assignment consumes its row and its target. Ties on final score fall back
// to target priority, then to candidate generation order (row index, then
// registry order), so identical input always produces an identical mapping.
func (m *Mapper) Map(ds *model.Dataset) *model.Mapping {
	cands := m.candidates(ds)

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Final != cands[j].Final {
			return cands[i].Final > cands[j].Final
		}
		return cands[i].Priority > cands[j].Priority
	})

	rowUsed := make(map[int]struct{})
	targetUsed := make(map[string]struct{})
	var assignments []model.Assignment

	for i := range cands {
		c := &cands[i]
		if c.Final < m.cfg.MinConfidence {
			// Sorted descending: nothing after this clears the threshold.
			break
		}
		if _, ok := rowUsed[c.RowIndex]; ok {
			continue
		}
		if _, ok := targetUsed[c.Target]; ok {
			continue
		}
		if m.blockedSingleToken(c) {
			zap.L().Debug("mapper: single-token label below floor",
				zap.String("label", c.Label),
				zap.String("target", c.Target),
				zap.Float64("confidence", c.Final),
			)
			continue
		}

		m.warnAmbiguous(cands, i, rowUsed)

		conf := c.Final
		if conf > 1.0 {
			conf = 1.0
		}
		assignments = append(assignments, model.Assignment{
			Target:      c.Target,
			RowIndex:    c.RowIndex,
			SourceLabel: ds.Rows[c.RowIndex].Label,
			Statement:   ds.Rows[c.RowIndex].Statement,
			Confidence:  conf,
			Base:        c.Base,
			Bonus:       c.Bonus,
			Note:        c.Note,
		})
		rowUsed[c.RowIndex] = struct{}{}
		targetUsed[c.Target] = struct{}{}
	}

	zap.L().Info("mapper: assignment complete",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("candidates", len(cands)),
		zap.Int("assigned", len(assignments)),
		zap.Int("targets", m.reg.Len()),
	)

	return model.NewMapping(assignments)
}

// Candidates returns the scored candidate list before assignment, in
// generation order. Exposed for the audit report.
func (m *Mapper) Candidates(ds *model.Dataset) []Candidate {
	return m.candidates(ds)
}

func (m *Mapper) candidates(ds *model.Dataset) []Candidate {
	targets := m.reg.Targets()
	var out []Candidate

	for rowIdx := range ds.Rows {
		row := &ds.Rows[rowIdx]
		label := normalize.Label(row.Label)
		if label == "" {
			continue
		}
		for tIdx := range targets {
			def := &targets[tIdx]
			sc := m.sc.ScoreLabel(label, row.Statement, def)
			if !m.sc.Candidate(sc) {
				continue
			}

			c := Candidate{
				RowIndex: rowIdx,
				Target:   def.Name,
				Label:    label,
				Base:     sc.Confidence,
				Final:    sc.Confidence,
				Rule:     sc.Rule,
				Pattern:  sc.Pattern,
				Priority: def.Priority,
			}

			// Tiebreak bonuses only apply to candidates already past the
			// acceptance threshold; they order surviving candidates, never
			// rescue failing ones.
			if c.Base >= m.cfg.MinConfidence {
				for _, tb := range m.reg.TiebreaksFor(def.Name) {
					if tb.Matches(label) {
						c.Bonus += tb.Bonus
						c.Note = tb.Note
					}
				}
				c.Final = c.Base + c.Bonus
			}

			out = append(out, c)
		}
	}
	return out
}

// blockedSingleToken applies the stricter floor for labels that normalize to
// a single generic token. A bare "total" or "other" carries no metric
// identity of its own, so anything short of a near-exact score is refused.
// Specific single tokens ("inventories") and registered abbreviations are
// exempt.
func (m *Mapper) blockedSingleToken(c *Candidate) bool {
	if c.Rule == scorer.RuleAbbreviation {
		return false
	}
	if !normalize.SingleToken(c.Label) || !normalize.IsStopWord(c.Label) {
		return false
	}
	return c.Final < m.cfg.SingleTokenFloor
}

// warnAmbiguous logs when the candidate being assigned ties on final score
// with another live candidate for the same target. The tie is resolved by
// priority and generation order; the log line is the audit trail.
func (m *Mapper) warnAmbiguous(cands []Candidate, chosen int, rowUsed map[int]struct{}) {
	c := &cands[chosen]
	for j := chosen + 1; j < len(cands); j++ {
		r := &cands[j]
		if r.Final != c.Final {
			break
		}
		if r.Target != c.Target || r.RowIndex == c.RowIndex {
			continue
		}
		if _, used := rowUsed[r.RowIndex]; used {
			continue
		}
		zap.L().Warn("mapper: ambiguous match",
			zap.String("target", c.Target),
			zap.String("chosen", c.Label),
			zap.String("rival", r.Label),
			zap.Float64("score", c.Final),
		)
		return
	}
}
