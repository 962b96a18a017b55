package waterfall

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/config"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/normalize"
	"github.com/crestline-research/finmap/internal/registry"
)

// Resolver executes the derivation waterfall for one mapped dataset: direct
// mapping, then registry formulas, then the fallback scan, in that order for
// every (target, year) cell. Results are memoized per cell, so a shared
// operand like Income Before Tax is resolved once no matter how many formulas
// reference it.
type Resolver struct {
	cfg     config.EngineConfig
	reg     *registry.Registry
	ds      *model.Dataset
	mapping *model.Mapping

	// labels holds normalized row labels, index-aligned with ds.Rows.
	labels []string

	memo map[cellKey]model.ResolvedValue

	// implausibleDirect notes targets whose mapped row failed the magnitude
	// guard; the direct step is skipped for them in every year.
	implausibleDirect map[string]string
}

type cellKey struct {
	target string
	year   string
}

// NewResolver prepares a resolver for one dataset and its mapping. Magnitude
// guards are armed up front because they compare sums across all years, not
// one cell at a time.
func NewResolver(cfg config.EngineConfig, reg *registry.Registry, ds *model.Dataset, mapping *model.Mapping) *Resolver {
	r := &Resolver{
		cfg:               cfg,
		reg:               reg,
		ds:                ds,
		mapping:           mapping,
		labels:            make([]string, len(ds.Rows)),
		memo:              make(map[cellKey]model.ResolvedValue),
		implausibleDirect: make(map[string]string),
	}
	for i := range ds.Rows {
		r.labels[i] = normalize.Label(ds.Rows[i].Label)
	}
	r.armMagnitudeGuards()
	return r
}

// ResolveAll resolves every registry target for every dataset year.
func (r *Resolver) ResolveAll() *model.ResolutionTable {
	table := model.NewResolutionTable(r.reg.TargetNames(), r.ds.Years)
	for _, target := range table.Targets {
		for _, year := range table.Years {
			table.Put(r.Resolve(target, year))
		}
	}
	counts := table.CountByProvenance()
	zap.L().Info("waterfall: resolution complete",
		zap.String("company", r.ds.Company),
		zap.Int("targets", len(table.Targets)),
		zap.Int("years", len(table.Years)),
		zap.Int("mapped", counts[model.ProvMapped]),
		zap.Int("derived", counts[model.ProvDerived]),
		zap.Int("fallback", counts[model.ProvFallback]),
		zap.Int("unresolved", counts[model.ProvUnresolved]),
	)
	return table
}

// Resolve runs the waterfall for a single target and year.
func (r *Resolver) Resolve(target, year string) model.ResolvedValue {
	v, _ := r.resolve(target, year, 0)
	return v
}

// resolve reports, alongside the value, whether the outcome was influenced by
// the depth limit anywhere beneath. Influenced outcomes are not memoized: a
// shallower entry path gets a larger budget and may resolve the cell.
func (r *Resolver) resolve(target, year string, depth int) (model.ResolvedValue, bool) {
	key := cellKey{target: target, year: year}
	if v, ok := r.memo[key]; ok {
		return v, false
	}
	if depth > r.cfg.MaxFormulaDepth {
		return model.ResolvedValue{
			Target:      target,
			Year:        year,
			Provenance:  model.ProvUnresolved,
			Explanation: "formula depth limit reached",
		}, true
	}
	v, limited := r.attempt(target, year, depth)
	if !limited {
		r.memo[key] = v
	}
	return v, limited
}

// attempt walks the waterfall steps for one cell, collecting a note for each
// step that fails so an unresolved cell can explain everything it tried.
func (r *Resolver) attempt(target, year string, depth int) (model.ResolvedValue, bool) {
	def, ok := r.reg.ByName(target)
	if !ok {
		return model.ResolvedValue{
			Target:      target,
			Year:        year,
			Provenance:  model.ProvUnresolved,
			Explanation: "unknown target",
		}, false
	}

	var steps []string

	if a, ok := r.mapping.ForTarget(target); !ok {
		steps = append(steps, "no mapping")
	} else if note, bad := r.implausibleDirect[target]; bad {
		steps = append(steps, note)
	} else if v, ok := r.ds.Rows[a.RowIndex].Value(year); !ok {
		steps = append(steps, "mapped row has no value for "+year)
	} else if v == 0 && def.ZeroSuspect {
		steps = append(steps, "mapped value 0 is implausible for this target")
	} else {
		return model.ResolvedValue{
			Target:      target,
			Year:        year,
			Value:       v,
			Provenance:  model.ProvMapped,
			Explanation: fmt.Sprintf("mapped from %q (confidence %.3f)", a.SourceLabel, a.Confidence),
		}, false
	}

	limited := false
	if f, ok := r.reg.FormulaFor(target); !ok {
		steps = append(steps, "no formula")
	} else {
		v, expr, derived, lim := r.derive(f, year, depth)
		limited = lim
		if derived {
			return model.ResolvedValue{
				Target:      target,
				Year:        year,
				Value:       v,
				Provenance:  model.ProvDerived,
				Explanation: "derived as " + expr,
			}, limited
		}
		steps = append(steps, "no formula alternative fully resolved")
	}

	if fb, ok := r.reg.FallbackFor(target); !ok {
		steps = append(steps, "no fallback rule")
	} else if idx, v, ok := r.scan(fb, target, year); ok {
		return model.ResolvedValue{
			Target:      target,
			Year:        year,
			Value:       v,
			Provenance:  model.ProvFallback,
			Explanation: fmt.Sprintf("fallback scan matched %q", r.ds.Rows[idx].Label),
		}, limited
	} else {
		steps = append(steps, "no fallback match")
	}

	return model.ResolvedValue{
		Target:      target,
		Year:        year,
		Provenance:  model.ProvUnresolved,
		Explanation: strings.Join(steps, ", "),
	}, limited
}

// derive tries each formula alternative in order and returns the first one
// whose operands all resolve, with a printable expression for the audit trail.
// An alternative with any unresolved operand contributes nothing; a derived
// value is never fabricated from partial inputs. The last return reports
// whether any operand ran into the depth limit.
func (r *Resolver) derive(f *model.Formula, year string, depth int) (float64, string, bool, bool) {
	limited := false
	for _, alt := range f.Alternatives {
		if len(alt) == 0 {
			continue
		}
		total := 0.0
		var expr strings.Builder
		complete := true
		for i, term := range alt {
			res, lim := r.resolve(term.Target, year, depth+1)
			limited = limited || lim
			if !res.Resolved() {
				complete = false
				break
			}
			total += float64(term.Sign) * res.Value
			switch {
			case i == 0 && term.Sign < 0:
				expr.WriteString("-")
			case i > 0 && term.Sign < 0:
				expr.WriteString(" - ")
			case i > 0:
				expr.WriteString(" + ")
			}
			expr.WriteString(term.Target)
		}
		if complete {
			return total, expr.String(), true, limited
		}
	}
	return 0, "", false, limited
}

// scan runs the fallback search for one target and year: statement-scoped,
// skipping the directly mapped row and disqualified labels, picking the
// largest-magnitude non-zero match. Ties keep the earliest row.
func (r *Resolver) scan(fb *model.FallbackRule, target, year string) (int, float64, bool) {
	mappedRow := -1
	if a, ok := r.mapping.ForTarget(target); ok {
		mappedRow = a.RowIndex
	}

	bestIdx := -1
	bestVal := 0.0
	bestAbs := 0.0
rows:
	for i := range r.ds.Rows {
		if i == mappedRow {
			continue
		}
		row := &r.ds.Rows[i]
		if !row.Statement.Gates(fb.Statement) {
			continue
		}
		label := r.labels[i]
		if label == "" {
			continue
		}
		for _, sl := range fb.SkipLabels {
			if label == sl {
				continue rows
			}
		}
		for _, sk := range fb.Skip {
			if strings.Contains(label, sk) {
				continue rows
			}
		}
		if !fb.Matches(label) {
			continue
		}
		v, ok := row.Value(year)
		if !ok || v == 0 {
			continue
		}
		if abs := math.Abs(v); abs > bestAbs {
			bestIdx, bestVal, bestAbs = i, v, abs
		}
	}
	return bestIdx, bestVal, bestIdx >= 0
}

// armMagnitudeGuards pre-computes, per guarded target, whether the directly
// mapped row plausibly carries the real figure. Vendor exports sometimes leave
// a token value on the header row while the true spend sits on purchase
// sub-lines; comparing summed magnitudes across all years catches that shape.
func (r *Resolver) armMagnitudeGuards() {
	for _, target := range r.reg.TargetNames() {
		fb, ok := r.reg.FallbackFor(target)
		if !ok || fb.DirectRatio <= 0 {
			continue
		}
		a, ok := r.mapping.ForTarget(target)
		if !ok {
			continue
		}
		ratio := fb.DirectRatio
		if r.cfg.FallbackMagnitudeRatio > 0 {
			ratio = r.cfg.FallbackMagnitudeRatio
		}

		var directSum, scanSum float64
		for _, year := range r.ds.Years {
			if v, ok := r.ds.Rows[a.RowIndex].Value(year); ok {
				directSum += math.Abs(v)
			}
			if _, v, ok := r.scan(fb, target, year); ok {
				scanSum += math.Abs(v)
			}
		}
		if scanSum <= 0 || directSum/scanSum >= ratio {
			continue
		}
		r.implausibleDirect[target] = fmt.Sprintf("mapped row %q magnitude implausible against fallback candidates", a.SourceLabel)
		zap.L().Info("waterfall: magnitude guard tripped, direct mapping set aside",
			zap.String("target", target),
			zap.String("mapped_label", a.SourceLabel),
			zap.Float64("direct_sum", directSum),
			zap.Float64("scan_sum", scanSum),
		)
	}
}
