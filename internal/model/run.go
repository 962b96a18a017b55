package model

import "time"

// RunRecord is one persisted mapping/resolution run.
type RunRecord struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	RowCount  int       `json:"row_count"`
	Years     []string  `json:"years"`
	Mapped    int       `json:"mapped"`
	Unmapped  int       `json:"unmapped"`
	Config    string    `json:"config,omitempty"` // threshold fingerprint, JSON
	CreatedAt time.Time `json:"created_at"`
}

// StoredMapping is one persisted assignment row.
type StoredMapping struct {
	RunID       string    `json:"run_id"`
	Target      string    `json:"target"`
	SourceLabel string    `json:"source_label"`
	Statement   Statement `json:"statement"`
	Confidence  float64   `json:"confidence"`
	Base        float64   `json:"base"`
	Bonus       float64   `json:"bonus"`
	Note        string    `json:"note,omitempty"`
}

// StoredResolution is one persisted (target, year) resolution row.
type StoredResolution struct {
	RunID       string     `json:"run_id"`
	Target      string     `json:"target"`
	Year        string     `json:"year"`
	Value       float64    `json:"value"`
	Provenance  Provenance `json:"provenance"`
	Explanation string     `json:"explanation,omitempty"`
}
