// Package analysis computes ratio suites, growth trends, DuPont and
// Penman-Nissim decompositions, and distress/quality scores from a resolved
// metric table. Everything here is a pure consumer: values come from the
// waterfall's resolution table through accessors that keep gaps distinct
// from true zeros.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/model"
)

// Result bundles every analysis block for one company run.
type Result struct {
	Company string   `json:"company"`
	Years   []string `json:"years"`

	Ratios    *Ratios               `json:"ratios,omitempty"`
	Trends    map[string]Trend      `json:"trends,omitempty"`
	DuPont    map[string]DuPontYear `json:"dupont,omitempty"`
	Altman    map[string]AltmanZ    `json:"altman_z,omitempty"`
	Piotroski map[string]FScore     `json:"piotroski_f,omitempty"`
	Recast    *Recast               `json:"penman_nissim,omitempty"`

	Profile CompanyProfile `json:"profile"`
}

// Analyze runs the full suite over a resolution table.
func Analyze(ds *model.Dataset, table *model.ResolutionTable) *Result {
	years := table.Years
	profile := detectProfile(table, years)

	res := &Result{
		Company:   ds.Company,
		Years:     years,
		Ratios:    ComputeRatios(table),
		Trends:    ComputeTrends(table),
		DuPont:    ComputeDuPont(table),
		Altman:    ComputeAltman(table),
		Piotroski: ComputePiotroski(table),
		Recast:    ComputeRecast(table, profile),
		Profile:   profile,
	}

	zap.L().Info("analysis: suite complete",
		zap.String("company", ds.Company),
		zap.Int("years", len(years)),
		zap.Int("trend_metrics", len(res.Trends)),
		zap.Int("ratio_notes", len(res.Ratios.Notes)),
	)
	return res
}

// figures reads resolved values for ratio construction. Required reads that
// miss are recorded once per (target, year) so reports can say why a ratio
// is absent instead of silently computing from zero.
type figures struct {
	table   *model.ResolutionTable
	missing map[string]struct{}
}

func newFigures(table *model.ResolutionTable) *figures {
	return &figures{table: table, missing: make(map[string]struct{})}
}

// get returns a required figure, recording a miss when unresolved.
func (f *figures) get(target, year string) (float64, bool) {
	v, ok := f.table.Value(target, year)
	if !ok {
		f.missing[target+" "+year] = struct{}{}
	}
	return v, ok
}

// opt returns an optional figure, zero when unresolved. No miss is recorded;
// absence of the target is an accepted input state, not a gap.
func (f *figures) opt(target, year string) float64 {
	v, _ := f.table.Value(target, year)
	return v
}

// peek reads without recording, for inputs whose absence changes the
// computation rather than suppressing it.
func (f *figures) peek(target, year string) (float64, bool) {
	return f.table.Value(target, year)
}

// describe renders one input with its provenance for signal reporting.
func (f *figures) describe(target, year string) string {
	v, ok := f.table.Get(target, year)
	if !ok || !v.Resolved() {
		return target + " unresolved"
	}
	return fmt.Sprintf("%s %.2f (%s)", target, v.Value, v.Provenance)
}

func (f *figures) notes() []string {
	out := make([]string, 0, len(f.missing))
	for key := range f.missing {
		out = append(out, key+" unresolved, dependent ratios skipped")
	}
	sort.Strings(out)
	return out
}

// avgOf averages two optional figures, tolerating one side missing the way
// opening-balance averages must in the first covered year.
func avgOf(a, b *float64) *float64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	}
	v := (*a + *b) / 2
	return &v
}

func ptr(v float64) *float64 { return &v }

// clamp bounds a ratio so degenerate denominators cannot blow up a report.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// CompanyProfile captures characteristics that steer the Penman-Nissim
// classification: holding and investment companies carry securities as their
// operating book, not as idle treasury.
type CompanyProfile struct {
	IsHolding            bool     `json:"is_holding"`
	IsInvestment         bool     `json:"is_investment"`
	HasDebt              bool     `json:"has_debt"`
	InvestmentAssetRatio float64  `json:"investment_asset_ratio"`
	OtherIncomeRatio     float64  `json:"other_income_ratio"`
	InventoryRatio       float64  `json:"inventory_ratio"`
	Characteristics      []string `json:"characteristics,omitempty"`
}

// detectProfile inspects up to the last three years of resolved figures.
func detectProfile(table *model.ResolutionTable, years []string) CompanyProfile {
	recent := years
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	var totalAssets, investments, inventory, revenue, otherIncome, debt float64
	points := 0
	for _, y := range recent {
		ta, ok := table.Value("Total Assets", y)
		if ok && ta > 0 {
			opt := func(t string) float64 { v, _ := table.Value(t, y); return v }
			totalAssets += ta
			investments += opt("Long-term Investments") + opt("Short-term Investments")
			inventory += opt("Inventory")
			debt += opt("Short-term Debt") + opt("Long-term Debt")
			points++
		}
		if rev, ok := table.Value("Revenue", y); ok {
			revenue += rev
			oi, _ := table.Value("Other Income", y)
			otherIncome += oi
		}
	}
	if points == 0 {
		return CompanyProfile{}
	}

	p := CompanyProfile{}
	if totalAssets > 0 {
		p.InvestmentAssetRatio = investments / totalAssets
		p.InventoryRatio = inventory / totalAssets
		p.HasDebt = debt > totalAssets*0.01
	}
	if revenue > 0 {
		p.OtherIncomeRatio = otherIncome / revenue
	}
	p.IsHolding = p.InvestmentAssetRatio > 0.30 && p.InventoryRatio < 0.05
	p.IsInvestment = p.InvestmentAssetRatio > 0.50 ||
		(p.OtherIncomeRatio > 0.10 && p.InvestmentAssetRatio > 0.25)

	if p.InvestmentAssetRatio > 0.50 {
		p.Characteristics = append(p.Characteristics,
			fmt.Sprintf("high investment concentration (%.0f%% of assets)", p.InvestmentAssetRatio*100))
	}
	if p.InventoryRatio < 0.01 {
		p.Characteristics = append(p.Characteristics,
			"minimal inventory, unlikely to be a manufacturing or trading business")
	}
	if !p.HasDebt {
		p.Characteristics = append(p.Characteristics, "debt-free")
	}
	if p.OtherIncomeRatio > 0.10 {
		p.Characteristics = append(p.Characteristics,
			fmt.Sprintf("significant other income (%.0f%% of revenue)", p.OtherIncomeRatio*100))
	}
	return p
}
