package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRowValue(t *testing.T) {
	t.Parallel()

	row := RawRow{
		Label:     "Total Assets",
		Statement: BalanceSheet,
		Values:    map[string]float64{"202303": 900, "202403": 1000},
	}

	t.Run("present year", func(t *testing.T) {
		t.Parallel()
		v, ok := row.Value("202403")
		require.True(t, ok)
		assert.Equal(t, 1000.0, v)
	})

	t.Run("absent year", func(t *testing.T) {
		t.Parallel()
		_, ok := row.Value("202503")
		assert.False(t, ok)
	})

	t.Run("nil values map", func(t *testing.T) {
		t.Parallel()
		empty := RawRow{Label: "x"}
		_, ok := empty.Value("202403")
		assert.False(t, ok)
	})
}

func TestDatasetRecomputeYears(t *testing.T) {
	t.Parallel()

	t.Run("sorted union across rows", func(t *testing.T) {
		t.Parallel()
		d := Dataset{Rows: []RawRow{
			{Label: "a", Values: map[string]float64{"202403": 1, "202203": 2}},
			{Label: "b", Values: map[string]float64{"202303": 3, "202403": 4}},
		}}
		d.RecomputeYears()
		assert.Equal(t, []string{"202203", "202303", "202403"}, d.Years)
	})

	t.Run("empty dataset yields no years", func(t *testing.T) {
		t.Parallel()
		d := Dataset{}
		d.RecomputeYears()
		assert.Empty(t, d.Years)
	})

	t.Run("replaces stale years", func(t *testing.T) {
		t.Parallel()
		d := Dataset{
			Years: []string{"190003"},
			Rows:  []RawRow{{Label: "a", Values: map[string]float64{"202403": 1}}},
		}
		d.RecomputeYears()
		assert.Equal(t, []string{"202403"}, d.Years)
	})
}
