// Package registry holds the declarative rule set the engine runs against:
// target definitions, tiebreak bonuses, fallback scans, and derivation
// formulas. All pattern text is normalized once at load, every structural
// constraint is checked at load, and the loaded registry is immutable, so the
// matching and resolution code can trust its data unconditionally.
package registry

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/normalize"
)

const (
	minTiebreakBonus = 0.001
	maxTiebreakBonus = 0.01
)

// Registry is a validated, normalized rule set.
type Registry struct {
	targets   []model.TargetDefinition
	byName    map[string]*model.TargetDefinition
	tiebreaks map[string][]model.TiebreakRule
	fallbacks map[string]*model.FallbackRule
	formulas  map[string]*model.Formula
}

// Default builds the shipped registry.
func Default() (*Registry, error) {
	return build(builtinTargets, builtinTiebreaks, builtinFallbacks, builtinFormulas)
}

func build(
	targets []model.TargetDefinition,
	tiebreaks []model.TiebreakRule,
	fallbacks []model.FallbackRule,
	formulas []model.Formula,
) (*Registry, error) {
	r := &Registry{
		targets:   make([]model.TargetDefinition, len(targets)),
		byName:    make(map[string]*model.TargetDefinition, len(targets)),
		tiebreaks: make(map[string][]model.TiebreakRule, len(tiebreaks)),
		fallbacks: make(map[string]*model.FallbackRule, len(fallbacks)),
		formulas:  make(map[string]*model.Formula, len(formulas)),
	}

	for i, t := range targets {
		if t.Name == "" {
			return nil, eris.Errorf("registry: target %d has an empty name", i)
		}
		if !t.Statement.Valid() {
			return nil, eris.Errorf("registry: target %q has unknown statement %q", t.Name, t.Statement)
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, eris.Errorf("registry: duplicate target %q", t.Name)
		}

		t.Patterns = normalizeDedupe(t.Patterns)
		t.Exclude = normalizeDedupe(t.Exclude)
		t.Abbreviations = normalizeDedupe(t.Abbreviations)
		for _, abbr := range t.Abbreviations {
			if !contains(t.Patterns, abbr) {
				return nil, eris.Errorf("registry: target %q abbreviation %q is not one of its patterns", t.Name, abbr)
			}
		}

		r.targets[i] = t
		r.byName[t.Name] = &r.targets[i]
	}

	for _, rule := range tiebreaks {
		if _, ok := r.byName[rule.Target]; !ok {
			return nil, eris.Errorf("registry: tiebreak references unknown target %q", rule.Target)
		}
		if rule.Bonus < minTiebreakBonus || rule.Bonus > maxTiebreakBonus {
			return nil, eris.Errorf("registry: tiebreak for %q has bonus %g outside [%g, %g]",
				rule.Target, rule.Bonus, minTiebreakBonus, maxTiebreakBonus)
		}
		rule.EqualsAny = normalizeDedupe(rule.EqualsAny)
		rule.ContainsAny = normalizeDedupe(rule.ContainsAny)
		if len(rule.EqualsAny) == 0 && len(rule.ContainsAny) == 0 {
			return nil, eris.Errorf("registry: tiebreak for %q has an empty predicate", rule.Target)
		}
		r.tiebreaks[rule.Target] = append(r.tiebreaks[rule.Target], rule)
	}

	for _, fb := range fallbacks {
		if _, ok := r.byName[fb.Target]; !ok {
			return nil, eris.Errorf("registry: fallback references unknown target %q", fb.Target)
		}
		if _, dup := r.fallbacks[fb.Target]; dup {
			return nil, eris.Errorf("registry: duplicate fallback for target %q", fb.Target)
		}
		if !fb.Statement.Valid() {
			return nil, eris.Errorf("registry: fallback for %q has unknown statement %q", fb.Target, fb.Statement)
		}
		fb.Patterns = normalizeDedupe(fb.Patterns)
		if len(fb.Patterns) == 0 {
			return nil, eris.Errorf("registry: fallback for %q has no patterns", fb.Target)
		}
		fb.Skip = normalizeDedupe(fb.Skip)
		fb.SkipLabels = normalizeDedupe(fb.SkipLabels)
		if fb.DirectRatio < 0 || fb.DirectRatio >= 1 {
			return nil, eris.Errorf("registry: fallback for %q has direct ratio %g outside [0, 1)", fb.Target, fb.DirectRatio)
		}
		rule := fb
		r.fallbacks[fb.Target] = &rule
	}

	for _, f := range formulas {
		if _, ok := r.byName[f.Target]; !ok {
			return nil, eris.Errorf("registry: formula references unknown target %q", f.Target)
		}
		if _, dup := r.formulas[f.Target]; dup {
			return nil, eris.Errorf("registry: duplicate formula for target %q", f.Target)
		}
		if len(f.Alternatives) == 0 {
			return nil, eris.Errorf("registry: formula for %q has no alternatives", f.Target)
		}
		for _, alt := range f.Alternatives {
			if len(alt) == 0 {
				return nil, eris.Errorf("registry: formula for %q has an empty alternative", f.Target)
			}
			for _, term := range alt {
				if term.Sign != 1 && term.Sign != -1 {
					return nil, eris.Errorf("registry: formula for %q has term sign %d, want +1 or -1", f.Target, term.Sign)
				}
				if _, ok := r.byName[term.Target]; !ok {
					return nil, eris.Errorf("registry: formula for %q references unknown target %q", f.Target, term.Target)
				}
				if term.Target == f.Target {
					return nil, eris.Errorf("registry: formula for %q references itself", f.Target)
				}
			}
		}
		formula := f
		r.formulas[f.Target] = &formula
	}

	// A target may omit patterns only when a formula can supply it.
	for i := range r.targets {
		t := &r.targets[i]
		if len(t.Patterns) == 0 {
			if _, ok := r.formulas[t.Name]; !ok {
				return nil, eris.Errorf("registry: target %q has no patterns and no formula", t.Name)
			}
		}
	}

	if err := r.checkAcyclic(); err != nil {
		return nil, err
	}
	return r, nil
}

// checkAcyclic walks the formula dependency graph once at load. A cycle here
// is a configuration defect and must never reach resolution.
func (r *Registry) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(r.formulas))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch color[name] {
		case gray:
			return eris.Errorf("registry: cyclic formula %s", fmt.Sprint(append(path, name)))
		case black:
			return nil
		}
		color[name] = gray
		if f, ok := r.formulas[name]; ok {
			for _, op := range f.Operands() {
				if err := visit(op, append(path, name)); err != nil {
					return err
				}
			}
		}
		color[name] = black
		return nil
	}

	for i := range r.targets {
		if err := visit(r.targets[i].Name, nil); err != nil {
			return err
		}
	}
	return nil
}

// Targets returns every target definition in table order. Callers must not
// modify the returned slice.
func (r *Registry) Targets() []model.TargetDefinition {
	return r.targets
}

// TargetNames returns target names in table order.
func (r *Registry) TargetNames() []string {
	names := make([]string, len(r.targets))
	for i := range r.targets {
		names[i] = r.targets[i].Name
	}
	return names
}

// ByName returns the definition for a target name.
func (r *Registry) ByName(name string) (*model.TargetDefinition, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// ByStatement returns target names gated to the given statement, in table
// order.
func (r *Registry) ByStatement(stmt model.Statement) []string {
	var names []string
	for i := range r.targets {
		if r.targets[i].Statement == stmt {
			names = append(names, r.targets[i].Name)
		}
	}
	return names
}

// TiebreaksFor returns the tiebreak rules registered for a target.
func (r *Registry) TiebreaksFor(target string) []model.TiebreakRule {
	return r.tiebreaks[target]
}

// FallbackFor returns the fallback rule registered for a target.
func (r *Registry) FallbackFor(target string) (*model.FallbackRule, bool) {
	fb, ok := r.fallbacks[target]
	return fb, ok
}

// FormulaFor returns the formula registered for a target.
func (r *Registry) FormulaFor(target string) (*model.Formula, bool) {
	f, ok := r.formulas[target]
	return f, ok
}

// Len returns the number of targets.
func (r *Registry) Len() int {
	return len(r.targets)
}

func normalizeDedupe(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		norm := normalize.Label(p)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
