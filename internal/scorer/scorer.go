package scorer

import (
	"strings"

	"github.com/crestline-research/finmap/internal/config"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/normalize"
)

// Veto reason codes.
const (
	VetoStatementGate  = "statement_gate"
	VetoExcludePattern = "exclude_pattern"
)

// Rule names recorded on scores, most specific first.
const (
	RuleAbbreviation = "abbreviation"
	RuleExact        = "exact"
	RuleSubstring    = "substring"
	RuleTokenOverlap = "token_overlap"
)

const (
	// Substring confidence runs from substringBase up to, but never reaching,
	// substringBase+substringSpan: the contained side is strictly shorter than
	// the containing side, so the length ratio stays below 1.
	substringBase = 0.80
	substringSpan = 0.18

	// Contained strings shorter than this only count on a whole-token
	// boundary. A 3-character pattern sits inside too many unrelated compound
	// words to trust as a raw substring.
	shortTokenMin = 4

	// Token-overlap confidence tops out below both exact and full-containment
	// scores.
	tokenOverlapCap = 0.90
)

// Score is the result of scoring one row label against one target.
type Score struct {
	Confidence float64 `json:"confidence"`
	Rule       string  `json:"rule,omitempty"`
	Pattern    string  `json:"pattern,omitempty"`
	Vetoed     bool    `json:"vetoed,omitempty"`
	VetoReason string  `json:"veto_reason,omitempty"`
}

// Scorer scores normalized row labels against target definitions.
type Scorer struct {
	cfg config.EngineConfig
}

// New creates a Scorer with the given engine thresholds.
func New(cfg config.EngineConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScoreLabel scores a normalized row label against a target definition.
// Vetoes are checked before any include pattern: a statement-gate mismatch or
// an exclude hit wins over every include score. The base score is the maximum
// across the target's patterns, where each pattern contributes via the first
// rule that fires for it (exact, then substring, then token overlap).
func (s *Scorer) ScoreLabel(label string, stmt model.Statement, def *model.TargetDefinition) Score {
	if !stmt.Gates(def.Statement) {
		return Score{Vetoed: true, VetoReason: VetoStatementGate}
	}
	for _, ex := range def.Exclude {
		if strings.Contains(label, ex) {
			return Score{Vetoed: true, VetoReason: VetoExcludePattern, Pattern: ex}
		}
	}

	var best Score
	for _, p := range def.Patterns {
		sc := s.scorePattern(label, p, def)
		if sc.Confidence > best.Confidence {
			best = sc
		}
	}
	return best
}

// Candidate reports whether the score clears the candidate floor.
func (s *Scorer) Candidate(sc Score) bool {
	return !sc.Vetoed && sc.Confidence > s.cfg.CandidateFloor
}

func (s *Scorer) scorePattern(label, pattern string, def *model.TargetDefinition) Score {
	if label == pattern {
		if def.IsAbbreviation(pattern) {
			return Score{Confidence: 1.0, Rule: RuleAbbreviation, Pattern: pattern}
		}
		return Score{Confidence: s.cfg.ExactScore, Rule: RuleExact, Pattern: pattern}
	}
	if conf, ok := substringScore(label, pattern); ok {
		return Score{Confidence: conf, Rule: RuleSubstring, Pattern: pattern}
	}
	if conf, ok := s.tokenOverlapScore(label, pattern); ok {
		return Score{Confidence: conf, Rule: RuleTokenOverlap, Pattern: pattern}
	}
	return Score{}
}

// substringScore checks containment in either direction and scales confidence
// by the contained side's share of the containing side, so a short pattern
// cannot fully claim a long unrelated label.
func substringScore(label, pattern string) (float64, bool) {
	short, long := pattern, label
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 || len(short) == len(long) {
		return 0, false
	}

	if len(short) < shortTokenMin {
		if !hasToken(long, short) {
			return 0, false
		}
	} else if !strings.Contains(long, short) {
		return 0, false
	}

	ratio := float64(len(short)) / float64(len(long))
	return substringBase + substringSpan*ratio, true
}

// tokenOverlapScore compares meaningful token sets. Overlap is shared tokens
// over the smaller set; anything at or below the configured floor is noise.
func (s *Scorer) tokenOverlapScore(label, pattern string) (float64, bool) {
	lt := normalize.MeaningfulTokens(label)
	pt := normalize.MeaningfulTokens(pattern)
	if len(lt) == 0 || len(pt) == 0 {
		return 0, false
	}

	shared := 0
	for tok := range pt {
		if _, ok := lt[tok]; ok {
			shared++
		}
	}
	smaller := len(lt)
	if len(pt) < smaller {
		smaller = len(pt)
	}

	overlap := float64(shared) / float64(smaller)
	if overlap <= s.cfg.TokenOverlapFloor {
		return 0, false
	}
	return tokenOverlapCap * overlap, true
}

func hasToken(s, tok string) bool {
	for _, f := range strings.Fields(s) {
		if f == tok {
			return true
		}
	}
	return false
}
