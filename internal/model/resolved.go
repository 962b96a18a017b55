package model

// Provenance records how a resolved value was obtained. Downstream consumers
// must branch on it: a zero with ProvMapped is a true reported zero, a zero
// with ProvUnresolved is a gap.
type Provenance string

const (
	ProvMapped     Provenance = "mapped"
	ProvDerived    Provenance = "derived"
	ProvFallback   Provenance = "fallback_scan"
	ProvUnresolved Provenance = "unresolved"
)

// ResolvedValue is the waterfall outcome for one target and year. Value is
// meaningful only when Resolved() is true.
type ResolvedValue struct {
	Target      string     `json:"target"`
	Year        string     `json:"year"`
	Value       float64    `json:"value"`
	Provenance  Provenance `json:"provenance"`
	Explanation string     `json:"explanation,omitempty"`
}

// Resolved reports whether the waterfall produced a usable value.
func (v ResolvedValue) Resolved() bool {
	return v.Provenance != ProvUnresolved && v.Provenance != ""
}

// ResolutionTable holds every ResolvedValue of one run, keyed by target and
// year. Built once by the waterfall; read-only afterwards.
type ResolutionTable struct {
	Targets []string `json:"targets"`
	Years   []string `json:"years"`

	values map[string]map[string]ResolvedValue
}

// NewResolutionTable creates an empty table for the given targets and years.
func NewResolutionTable(targets, years []string) *ResolutionTable {
	return &ResolutionTable{
		Targets: targets,
		Years:   years,
		values:  make(map[string]map[string]ResolvedValue, len(targets)),
	}
}

// Put stores one resolution. Last write wins; the waterfall writes each
// (target, year) exactly once.
func (t *ResolutionTable) Put(v ResolvedValue) {
	byYear, ok := t.values[v.Target]
	if !ok {
		byYear = make(map[string]ResolvedValue)
		t.values[v.Target] = byYear
	}
	byYear[v.Year] = v
}

// Get returns the resolution for a target and year.
func (t *ResolutionTable) Get(target, year string) (ResolvedValue, bool) {
	v, ok := t.values[target][year]
	return v, ok
}

// Value returns the numeric value for a target and year, reporting false for
// missing or unresolved entries. This is the accessor analysis code must use
// so a gap can never masquerade as zero.
func (t *ResolutionTable) Value(target, year string) (float64, bool) {
	v, ok := t.values[target][year]
	if !ok || !v.Resolved() {
		return 0, false
	}
	return v.Value, true
}

// All returns every stored resolution in (Targets, Years) order.
func (t *ResolutionTable) All() []ResolvedValue {
	out := make([]ResolvedValue, 0, len(t.Targets)*len(t.Years))
	for _, target := range t.Targets {
		for _, year := range t.Years {
			if v, ok := t.values[target][year]; ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// CountByProvenance tallies resolutions per provenance tag.
func (t *ResolutionTable) CountByProvenance() map[Provenance]int {
	counts := make(map[Provenance]int, 4)
	for _, target := range t.Targets {
		for _, year := range t.Years {
			if v, ok := t.values[target][year]; ok {
				counts[v.Provenance]++
			}
		}
	}
	return counts
}
