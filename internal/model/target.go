package model

import "strings"

// TargetDefinition declares one canonical metric and the evidence that maps
// vendor rows onto it. Patterns and excludes are stored in their normalized
// form; registry loading normalizes them once so labels and patterns are
// always compared on equal footing.
type TargetDefinition struct {
	Name      string    `yaml:"name" json:"name"`
	Statement Statement `yaml:"statement" json:"statement"`

	// Patterns are ordered most-canonical-first. A pattern's classification
	// (exact, substring, token-set) is decided at score time, not declared.
	Patterns []string `yaml:"patterns" json:"patterns"`

	// Exclude substrings veto a candidate regardless of its include score.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// Priority is a last-resort ordering hint between equal final scores. It
	// never overrides confidence.
	Priority int `yaml:"priority" json:"priority"`

	// Abbreviations are registered canonical short codes (pbt, capex, ppe).
	// An exact match on one scores at the very top of the exact band and is
	// exempt from single-token source protection.
	Abbreviations []string `yaml:"abbreviations,omitempty" json:"abbreviations,omitempty"`

	// ZeroSuspect marks targets where a mapped value of exactly 0 signals a
	// mis-mapped placeholder row rather than a true zero; the waterfall then
	// tries formulas and fallback scans before accepting anything.
	ZeroSuspect bool `yaml:"zero_suspect,omitempty" json:"zero_suspect,omitempty"`
}

// IsAbbreviation reports whether the normalized label is one of the target's
// registered short codes.
func (t *TargetDefinition) IsAbbreviation(norm string) bool {
	for _, a := range t.Abbreviations {
		if norm == a {
			return true
		}
	}
	return false
}

// TiebreakRule adds a small deterministic bonus to surviving candidates for
// one target, so that two sources scoring identically are ranked by registry
// policy instead of input luck. Predicates are data: a candidate matches when
// its normalized label equals any of EqualsAny or contains any of ContainsAny.
type TiebreakRule struct {
	Target      string   `yaml:"target" json:"target"`
	Bonus       float64  `yaml:"bonus" json:"bonus"` // additive, within [0.001, 0.01]
	EqualsAny   []string `yaml:"equals_any,omitempty" json:"equals_any,omitempty"`
	ContainsAny []string `yaml:"contains_any,omitempty" json:"contains_any,omitempty"`
	Note        string   `yaml:"note,omitempty" json:"note,omitempty"`
}

// Matches reports whether the rule's predicate holds for a normalized label.
func (r *TiebreakRule) Matches(norm string) bool {
	for _, eq := range r.EqualsAny {
		if norm == eq {
			return true
		}
	}
	for _, sub := range r.ContainsAny {
		if strings.Contains(norm, sub) {
			return true
		}
	}
	return false
}

// FallbackRule is the narrower secondary scan for one target, used when the
// direct mapping is missing or implausible. Patterns are intentionally more
// specific than the target's primary include patterns.
type FallbackRule struct {
	Target    string    `yaml:"target" json:"target"`
	Statement Statement `yaml:"statement" json:"statement"`
	Patterns  []string  `yaml:"patterns" json:"patterns"`

	// ExactOnly requires a pattern to equal the whole normalized label
	// instead of merely being contained in it.
	ExactOnly bool `yaml:"exact_only,omitempty" json:"exact_only,omitempty"`

	// Skip substrings disqualify a row from the scan.
	Skip []string `yaml:"skip,omitempty" json:"skip,omitempty"`

	// SkipLabels disqualify rows whose whole normalized label equals one of
	// these; used to keep the scan away from the canonical row the mapper
	// already tried.
	SkipLabels []string `yaml:"skip_labels,omitempty" json:"skip_labels,omitempty"`

	// DirectRatio, when positive, arms the magnitude guard: if the summed
	// magnitude of the directly mapped row across all years falls below
	// DirectRatio times the summed magnitude of the best fallback candidates,
	// the direct row is treated as implausible for every year.
	DirectRatio float64 `yaml:"direct_ratio,omitempty" json:"direct_ratio,omitempty"`
}

// Matches reports whether a normalized label satisfies the scan's patterns
// under its matching mode.
func (f *FallbackRule) Matches(norm string) bool {
	for _, p := range f.Patterns {
		if f.ExactOnly {
			if norm == p {
				return true
			}
		} else if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

// Term is one signed operand of a formula alternative.
type Term struct {
	Target string `yaml:"target" json:"target"`
	Sign   int    `yaml:"sign" json:"sign"` // +1 or -1
}

// Formula derives a target from other targets. Alternatives are tried in
// order; an alternative succeeds only when every operand resolves.
type Formula struct {
	Target       string   `yaml:"target" json:"target"`
	Alternatives [][]Term `yaml:"alternatives" json:"alternatives"`
}

// Operands returns the union of target names referenced by any alternative.
func (f *Formula) Operands() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, alt := range f.Alternatives {
		for _, t := range alt {
			if _, ok := seen[t.Target]; !ok {
				seen[t.Target] = struct{}{}
				out = append(out, t.Target)
			}
		}
	}
	return out
}
