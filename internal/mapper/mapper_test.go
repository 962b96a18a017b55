package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/config"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testEngine() config.EngineConfig {
	return config.EngineConfig{
		ExactScore:        0.980,
		MinConfidence:     0.75,
		SingleTokenFloor:  0.95,
		CandidateFloor:    0.55,
		TokenOverlapFloor: 0.60,
		MaxFormulaDepth:   5,
	}
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return reg
}

func dataset(rows ...model.RawRow) *model.Dataset {
	ds := &model.Dataset{Company: "Test Mills Ltd", Rows: rows}
	ds.RecomputeYears()
	return ds
}

func row(label string, stmt model.Statement, vals map[string]float64) model.RawRow {
	return model.RawRow{Label: label, Statement: stmt, Values: vals}
}

func TestMapAssignsExactRows(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Total Assets", model.BalanceSheet, map[string]float64{"202403": 5000}),
		row("Inventories", model.BalanceSheet, map[string]float64{"202403": 800}),
		row("Revenue from Operations", model.ProfitLoss, map[string]float64{"202403": 9000}),
		row("Profit Before Tax", model.ProfitLoss, map[string]float64{"202403": 700}),
	)

	mapping := m.Map(ds)
	assert.Equal(t, 4, mapping.Len())

	ta, ok := mapping.ForTarget("Total Assets")
	require.True(t, ok)
	assert.Equal(t, 0, ta.RowIndex)
	assert.InDelta(t, 0.982, ta.Confidence, 0.0001) // exact + equals-bonus
	assert.NotEmpty(t, ta.Note)

	inv, ok := mapping.ForTarget("Inventory")
	require.True(t, ok)
	assert.Equal(t, 1, inv.RowIndex)
	assert.InDelta(t, 0.983, inv.Confidence, 0.0001)

	rev, ok := mapping.ForTarget("Revenue")
	require.True(t, ok)
	assert.Equal(t, 2, rev.RowIndex)
	assert.InDelta(t, 0.980, rev.Confidence, 0.0001) // no "net" in label, no bonus

	pbt, ok := mapping.ForTarget("Income Before Tax")
	require.True(t, ok)
	assert.Equal(t, 3, pbt.RowIndex)
}

func TestMapInjectivity(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Current Assets", model.BalanceSheet, map[string]float64{"202403": 1200}),
		row("Total Current Assets", model.BalanceSheet, map[string]float64{"202403": 1200}),
		row("Non-Current Assets", model.BalanceSheet, map[string]float64{"202403": 3800}),
		row("Total Assets", model.BalanceSheet, map[string]float64{"202403": 5000}),
	)

	mapping := m.Map(ds)

	rowsSeen := make(map[int]bool)
	targetsSeen := make(map[string]bool)
	for _, a := range mapping.Assignments() {
		assert.False(t, rowsSeen[a.RowIndex], "row %d assigned twice", a.RowIndex)
		assert.False(t, targetsSeen[a.Target], "target %s assigned twice", a.Target)
		rowsSeen[a.RowIndex] = true
		targetsSeen[a.Target] = true
	}

	// Rows 0 and 1 score identically for Current Assets; input order decides
	// and the duplicate second row is left unused.
	ca, ok := mapping.ForTarget("Current Assets")
	require.True(t, ok)
	assert.Equal(t, 0, ca.RowIndex)
	_, ok = mapping.ForRow(1)
	assert.False(t, ok)

	ta, ok := mapping.ForTarget("Total Assets")
	require.True(t, ok)
	assert.Equal(t, 3, ta.RowIndex)
}

func TestMapDeterminism(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Total Assets", model.BalanceSheet, map[string]float64{"202303": 4200, "202403": 5000}),
		row("Total Equity and Liabilities", model.BalanceSheet, map[string]float64{"202403": 5000}),
		row("Inventories", model.BalanceSheet, map[string]float64{"202403": 800}),
		row("Trade Receivables", model.BalanceSheet, map[string]float64{"202403": 300}),
		row("Revenue from Operations", model.ProfitLoss, map[string]float64{"202403": 9000}),
	)

	first := m.Map(ds).Assignments()
	for i := 0; i < 5; i++ {
		again := m.Map(ds).Assignments()
		assert.Equal(t, first, again)
	}
}

func TestMapSingleTokenRejected(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Total", model.BalanceSheet, map[string]float64{"202403": 123}),
	)

	mapping := m.Map(ds)
	assert.Zero(t, mapping.Len())
	_, ok := mapping.ForRow(0)
	assert.False(t, ok)
}

func TestMapSpecificSingleTokenAllowed(t *testing.T) {
	// The stricter floor is for generic words; a lone "Spares" row still
	// carries inventory identity and may map on a partial score.
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Spares", model.BalanceSheet, map[string]float64{"202403": 60}),
	)

	mapping := m.Map(ds)
	inv, ok := mapping.ForTarget("Inventory")
	require.True(t, ok)
	assert.Equal(t, 0, inv.RowIndex)
	assert.InDelta(t, 0.8635, inv.Confidence, 0.0005)
	assert.Less(t, inv.Confidence, 0.95)
}

func TestMapAbbreviationExemptFromSingleTokenFloor(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("NCI", model.BalanceSheet, map[string]float64{"202403": 45}),
	)

	mapping := m.Map(ds)
	mi, ok := mapping.ForTarget("Minority Interest")
	require.True(t, ok)
	assert.Equal(t, 0, mi.RowIndex)
	assert.InDelta(t, 1.0, mi.Confidence, 0.0001)
}

func TestMapAggregateTiebreak(t *testing.T) {
	// The margin-money catch-all is a zero placeholder in Capitaline exports;
	// the other-than-cash aggregate must win the Bank Balances slot.
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Balances with Bank / Margin Money Balances", model.BalanceSheet, map[string]float64{"202403": 0}),
		row("Bank Balances Other Than Cash and Cash Equivalents", model.BalanceSheet, map[string]float64{"202403": 450}),
	)

	mapping := m.Map(ds)
	bb, ok := mapping.ForTarget("Bank Balances")
	require.True(t, ok)
	assert.Equal(t, 1, bb.RowIndex)
	assert.InDelta(t, 0.003, bb.Bonus, 0.0001)
}

func TestMapFullyReportedTiebreak(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Profit Before Exceptional Items and Tax", model.ProfitLoss, map[string]float64{"202403": 90}),
		row("Profit Before Tax", model.ProfitLoss, map[string]float64{"202403": 100}),
	)

	mapping := m.Map(ds)
	pbt, ok := mapping.ForTarget("Income Before Tax")
	require.True(t, ok)
	assert.Equal(t, 1, pbt.RowIndex)
	assert.InDelta(t, 0.983, pbt.Confidence, 0.0001)

	// The pre-exceptional row must not leak into the Exceptional Items slot.
	_, ok = mapping.ForTarget("Exceptional Items")
	assert.False(t, ok)
}

func TestMapVetoSupremacy(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Changes in Inventories", model.BalanceSheet, map[string]float64{"202403": -50}),
	)

	mapping := m.Map(ds)
	_, ok := mapping.ForTarget("Inventory")
	assert.False(t, ok)
	assert.Zero(t, mapping.Len())
}

func TestMapBonusNeverRescuesBelowThreshold(t *testing.T) {
	reg, err := registry.Merge(registry.Overlay{
		Targets: []model.TargetDefinition{
			{
				Name:      "Royalty Expense",
				Statement: model.ProfitLoss,
				Patterns:  []string{"royalty rates license fees"},
				Priority:  4,
			},
		},
		Tiebreaks: []model.TiebreakRule{
			{Target: "Royalty Expense", Bonus: 0.003, ContainsAny: []string{"royalty"}, Note: "royalty label preferred"},
		},
	})
	require.NoError(t, err)

	m := New(testEngine(), reg)
	ds := dataset(
		// Token overlap 2/3 gives base 0.60: above the candidate floor but
		// below acceptance, so the bonus must not apply and nothing maps.
		row("Royalty Rates Paid", model.ProfitLoss, map[string]float64{"202403": 12}),
	)

	cands := m.Candidates(ds)
	require.Len(t, cands, 1)
	assert.InDelta(t, 0.60, cands[0].Base, 0.0001)
	assert.Zero(t, cands[0].Bonus)
	assert.Equal(t, cands[0].Base, cands[0].Final)

	mapping := m.Map(ds)
	assert.Zero(t, mapping.Len())
}

func TestMapUnmappedTargetIsNotAnError(t *testing.T) {
	m := New(testEngine(), testRegistry(t))
	ds := dataset(
		row("Total Assets", model.BalanceSheet, map[string]float64{"202403": 5000}),
	)

	mapping := m.Map(ds)
	assert.Equal(t, 1, mapping.Len())
	_, ok := mapping.ForTarget("Revenue")
	assert.False(t, ok)
}
