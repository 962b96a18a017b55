package model

import "sort"

// RawRow is one line item of a vendor statement export. Rows are created by
// ingest and read-only afterwards; the engine never mutates them.
type RawRow struct {
	Label     string             `json:"label"`
	Statement Statement          `json:"statement"`
	Values    map[string]float64 `json:"values"` // fiscal year ("202403") -> reported value
}

// Value returns the row's figure for a fiscal year.
func (r *RawRow) Value(year string) (float64, bool) {
	v, ok := r.Values[year]
	return v, ok
}

// Dataset is the parsed input for one company: every statement row in source
// order plus the sorted union of fiscal years across all ingested files.
type Dataset struct {
	Company string   `json:"company"`
	Rows    []RawRow `json:"rows"`
	Years   []string `json:"years"`
	Sources []string `json:"sources,omitempty"`
}

// RecomputeYears rebuilds Years as the sorted union of every row's year keys.
func (d *Dataset) RecomputeYears() {
	seen := make(map[string]struct{})
	for i := range d.Rows {
		for y := range d.Rows[i].Values {
			seen[y] = struct{}{}
		}
	}
	years := make([]string, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Strings(years)
	d.Years = years
}
