package model

// Assignment is one mapper decision: a single source row feeding a single
// target, with the realized confidence recorded for audit.
type Assignment struct {
	Target      string    `json:"target"`
	RowIndex    int       `json:"row_index"`
	SourceLabel string    `json:"source_label"`
	Statement   Statement `json:"statement"`
	Confidence  float64   `json:"confidence"` // base + tiebreak bonus
	Base        float64   `json:"base"`
	Bonus       float64   `json:"bonus,omitempty"`
	Note        string    `json:"note,omitempty"` // tiebreak note, present when a bonus applied
}

// Mapping is the completed injective source-to-target assignment for one
// dataset. Built once by the mapper and read-only afterwards; the waterfall
// reads it but records derived values under their own provenance, never as
// fabricated assignments.
type Mapping struct {
	assignments []Assignment
	byTarget    map[string]int
	byRow       map[int]int
}

// NewMapping indexes the mapper's assignments. Order is the mapper's
// assignment order (descending final score).
func NewMapping(assignments []Assignment) *Mapping {
	m := &Mapping{
		assignments: assignments,
		byTarget:    make(map[string]int, len(assignments)),
		byRow:       make(map[int]int, len(assignments)),
	}
	for i := range assignments {
		m.byTarget[assignments[i].Target] = i
		m.byRow[assignments[i].RowIndex] = i
	}
	return m
}

// ForTarget returns the assignment feeding the named target.
func (m *Mapping) ForTarget(name string) (Assignment, bool) {
	i, ok := m.byTarget[name]
	if !ok {
		return Assignment{}, false
	}
	return m.assignments[i], true
}

// ForRow returns the assignment consuming the given source row index.
func (m *Mapping) ForRow(row int) (Assignment, bool) {
	i, ok := m.byRow[row]
	if !ok {
		return Assignment{}, false
	}
	return m.assignments[i], true
}

// Assignments returns every assignment in mapper order. Callers must not
// modify the returned slice.
func (m *Mapping) Assignments() []Assignment {
	return m.assignments
}

// Len returns the number of assignments.
func (m *Mapping) Len() int {
	return len(m.assignments)
}
