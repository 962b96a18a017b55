package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline-research/finmap/internal/model"
)

func TestDefaultLoads(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.Greater(t, reg.Len(), 70)

	inv, ok := reg.ByName("Inventory")
	require.True(t, ok)
	assert.Equal(t, model.BalanceSheet, inv.Statement)
	assert.True(t, inv.ZeroSuspect)
	assert.Contains(t, inv.Exclude, "changes in inventories")

	// Pattern text is normalized at load.
	cash, ok := reg.ByName("Cash and Cash Equivalents")
	require.True(t, ok)
	assert.Contains(t, cash.Patterns, "cash cash equivalents")
	for _, p := range cash.Patterns {
		assert.NotContains(t, p, "&")
	}
}

func TestDefaultDerivedOnlyTargets(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"EBIT", "EBITDA"} {
		def, ok := reg.ByName(name)
		require.True(t, ok, name)
		assert.Empty(t, def.Patterns)
		_, hasFormula := reg.FormulaFor(name)
		assert.True(t, hasFormula, name)
	}
}

func TestDefaultTiebreaksWithinRange(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	total := 0
	for _, name := range reg.TargetNames() {
		for _, rule := range reg.TiebreaksFor(name) {
			total++
			assert.GreaterOrEqual(t, rule.Bonus, minTiebreakBonus)
			assert.LessOrEqual(t, rule.Bonus, maxTiebreakBonus)
		}
	}
	assert.Equal(t, 12, total)
}

func TestBuildRejectsDuplicateTarget(t *testing.T) {
	targets := []model.TargetDefinition{
		{Name: "Revenue", Statement: model.ProfitLoss, Patterns: []string{"revenue"}},
		{Name: "Revenue", Statement: model.ProfitLoss, Patterns: []string{"total revenue"}},
	}
	_, err := build(targets, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate target")
}

func TestBuildRejectsPatternlessTargetWithoutFormula(t *testing.T) {
	targets := []model.TargetDefinition{
		{Name: "Orphan", Statement: model.ProfitLoss},
	}
	_, err := build(targets, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no patterns and no formula")
}

func TestBuildRejectsAbbreviationOutsidePatterns(t *testing.T) {
	targets := []model.TargetDefinition{
		{Name: "X", Statement: model.ProfitLoss, Patterns: []string{"full name"}, Abbreviations: []string{"fn"}},
	}
	_, err := build(targets, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abbreviation")
}

func TestBuildRejectsBadTiebreak(t *testing.T) {
	targets := []model.TargetDefinition{
		{Name: "X", Statement: model.ProfitLoss, Patterns: []string{"x ray"}},
	}

	_, err := build(targets, []model.TiebreakRule{{Target: "Y", Bonus: 0.002, EqualsAny: []string{"y"}}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target")

	_, err = build(targets, []model.TiebreakRule{{Target: "X", Bonus: 0.05, EqualsAny: []string{"x"}}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside")

	_, err = build(targets, []model.TiebreakRule{{Target: "X", Bonus: 0.002}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty predicate")
}

func TestBuildRejectsCyclicFormulas(t *testing.T) {
	targets := []model.TargetDefinition{
		{Name: "A", Statement: model.ProfitLoss},
		{Name: "B", Statement: model.ProfitLoss},
	}
	formulas := []model.Formula{
		{Target: "A", Alternatives: [][]model.Term{{plus("B")}}},
		{Target: "B", Alternatives: [][]model.Term{{plus("A")}}},
	}
	_, err := build(targets, nil, nil, formulas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic formula")
}

func TestBuildRejectsSelfReferencingFormula(t *testing.T) {
	targets := []model.TargetDefinition{
		{Name: "A", Statement: model.ProfitLoss},
	}
	formulas := []model.Formula{
		{Target: "A", Alternatives: [][]model.Term{{plus("A")}}},
	}
	_, err := build(targets, nil, nil, formulas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references itself")
}

func TestMergeOverlayReplacesAndAppends(t *testing.T) {
	ov := Overlay{
		Targets: []model.TargetDefinition{
			// Replace a builtin.
			{Name: "Goodwill", Statement: model.BalanceSheet, Patterns: []string{"goodwill", "purchased goodwill"}, Priority: 7},
			// Append a new one.
			{Name: "Royalty Expense", Statement: model.ProfitLoss, Patterns: []string{"royalty", "royalty expense"}, Priority: 4},
		},
		Tiebreaks: []model.TiebreakRule{
			{Target: "Royalty Expense", Bonus: 0.002, EqualsAny: []string{"royalty expense"}, Note: "exact label preferred"},
		},
	}
	reg, err := Merge(ov)
	require.NoError(t, err)

	gw, ok := reg.ByName("Goodwill")
	require.True(t, ok)
	assert.Contains(t, gw.Patterns, "purchased goodwill")
	assert.Equal(t, 7, gw.Priority)

	_, ok = reg.ByName("Royalty Expense")
	assert.True(t, ok)
	assert.Len(t, reg.TiebreaksFor("Royalty Expense"), 1)
}

func TestLoadWithOverlayFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	content := `
targets:
  - name: Royalty Expense
    statement: ProfitLoss
    patterns: ["royalty", "royalty expense"]
    priority: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := LoadWithOverlay(path)
	require.NoError(t, err)
	_, ok := reg.ByName("Royalty Expense")
	assert.True(t, ok)
}

func TestLoadWithOverlayEmptyPath(t *testing.T) {
	reg, err := LoadWithOverlay("")
	require.NoError(t, err)
	assert.Greater(t, reg.Len(), 0)
}

func TestByStatementOrder(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	bs := reg.ByStatement(model.BalanceSheet)
	require.NotEmpty(t, bs)
	assert.Equal(t, "Total Assets", bs[0])

	fin := reg.ByStatement(model.Financial)
	assert.Contains(t, fin, "Market Capitalisation")
}

func TestCriticalTargetsExist(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	for _, name := range CriticalTargets {
		_, ok := reg.ByName(name)
		assert.True(t, ok, name)
	}
}
