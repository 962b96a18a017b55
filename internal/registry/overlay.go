package registry

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/crestline-research/finmap/internal/model"
)

// Overlay is a YAML extension to the shipped registry. Targets, fallbacks and
// formulas replace a same-named builtin entry or append a new one; tiebreaks
// always append. The merged result goes through the same validation as the
// builtin tables, so an overlay cannot smuggle in a cycle or a bad bonus.
type Overlay struct {
	Targets   []model.TargetDefinition `yaml:"targets"`
	Tiebreaks []model.TiebreakRule     `yaml:"tiebreaks"`
	Fallbacks []model.FallbackRule     `yaml:"fallbacks"`
	Formulas  []model.Formula          `yaml:"formulas"`
}

// LoadWithOverlay builds the registry from the shipped tables merged with the
// overlay file at path. An empty path returns the default registry.
func LoadWithOverlay(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read overlay %s", path)
	}
	var ov Overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, eris.Wrapf(err, "registry: parse overlay %s", path)
	}
	return Merge(ov)
}

// Merge builds a registry from the shipped tables plus the given overlay.
func Merge(ov Overlay) (*Registry, error) {
	targets := mergeByKey(builtinTargets, ov.Targets, func(t model.TargetDefinition) string { return t.Name })
	fallbacks := mergeByKey(builtinFallbacks, ov.Fallbacks, func(f model.FallbackRule) string { return f.Target })
	formulas := mergeByKey(builtinFormulas, ov.Formulas, func(f model.Formula) string { return f.Target })

	tiebreaks := make([]model.TiebreakRule, 0, len(builtinTiebreaks)+len(ov.Tiebreaks))
	tiebreaks = append(tiebreaks, builtinTiebreaks...)
	tiebreaks = append(tiebreaks, ov.Tiebreaks...)

	return build(targets, tiebreaks, fallbacks, formulas)
}

// mergeByKey overlays extras onto base: same key replaces in place, new keys
// append in overlay order.
func mergeByKey[T any](base, extras []T, key func(T) string) []T {
	out := make([]T, len(base), len(base)+len(extras))
	copy(out, base)
	index := make(map[string]int, len(base))
	for i, item := range out {
		index[key(item)] = i
	}
	for _, extra := range extras {
		if i, ok := index[key(extra)]; ok {
			out[i] = extra
			continue
		}
		index[key(extra)] = len(out)
		out = append(out, extra)
	}
	return out
}
