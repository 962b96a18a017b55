package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedValueResolved(t *testing.T) {
	t.Parallel()

	t.Run("mapped is resolved", func(t *testing.T) {
		t.Parallel()
		v := ResolvedValue{Provenance: ProvMapped}
		assert.True(t, v.Resolved())
	})

	t.Run("derived is resolved", func(t *testing.T) {
		t.Parallel()
		v := ResolvedValue{Provenance: ProvDerived}
		assert.True(t, v.Resolved())
	})

	t.Run("fallback scan is resolved", func(t *testing.T) {
		t.Parallel()
		v := ResolvedValue{Provenance: ProvFallback}
		assert.True(t, v.Resolved())
	})

	t.Run("unresolved is not resolved", func(t *testing.T) {
		t.Parallel()
		v := ResolvedValue{Provenance: ProvUnresolved}
		assert.False(t, v.Resolved())
	})

	t.Run("zero value is not resolved", func(t *testing.T) {
		t.Parallel()
		var v ResolvedValue
		assert.False(t, v.Resolved())
	})
}

func TestResolutionTable(t *testing.T) {
	t.Parallel()

	table := NewResolutionTable(
		[]string{"Total Assets", "Revenue", "EBIT"},
		[]string{"202303", "202403"},
	)
	table.Put(ResolvedValue{Target: "Total Assets", Year: "202303", Value: 900, Provenance: ProvMapped})
	table.Put(ResolvedValue{Target: "Total Assets", Year: "202403", Value: 1000, Provenance: ProvMapped})
	table.Put(ResolvedValue{Target: "Revenue", Year: "202303", Value: 3500, Provenance: ProvMapped})
	table.Put(ResolvedValue{Target: "Revenue", Year: "202403", Value: 4000, Provenance: ProvDerived})
	table.Put(ResolvedValue{Target: "EBIT", Year: "202303", Provenance: ProvUnresolved, Explanation: "no source row"})
	table.Put(ResolvedValue{Target: "EBIT", Year: "202403", Value: 150, Provenance: ProvFallback})

	t.Run("Get returns stored resolution", func(t *testing.T) {
		t.Parallel()
		v, ok := table.Get("Revenue", "202403")
		require.True(t, ok)
		assert.Equal(t, 4000.0, v.Value)
		assert.Equal(t, ProvDerived, v.Provenance)
	})

	t.Run("Get reports missing cell", func(t *testing.T) {
		t.Parallel()
		_, ok := table.Get("Revenue", "202503")
		assert.False(t, ok)
	})

	t.Run("Value returns resolved figure", func(t *testing.T) {
		t.Parallel()
		v, ok := table.Value("Total Assets", "202403")
		require.True(t, ok)
		assert.Equal(t, 1000.0, v)
	})

	t.Run("Value hides unresolved cell", func(t *testing.T) {
		t.Parallel()
		_, ok := table.Value("EBIT", "202303")
		assert.False(t, ok, "an unresolved cell must not read as zero")
	})

	t.Run("Value hides missing cell", func(t *testing.T) {
		t.Parallel()
		_, ok := table.Value("Nonexistent", "202403")
		assert.False(t, ok)
	})

	t.Run("All returns cells in target then year order", func(t *testing.T) {
		t.Parallel()
		all := table.All()
		require.Len(t, all, 6)
		assert.Equal(t, "Total Assets", all[0].Target)
		assert.Equal(t, "202303", all[0].Year)
		assert.Equal(t, "Total Assets", all[1].Target)
		assert.Equal(t, "202403", all[1].Year)
		assert.Equal(t, "EBIT", all[5].Target)
		assert.Equal(t, "202403", all[5].Year)
	})

	t.Run("CountByProvenance tallies stored cells", func(t *testing.T) {
		t.Parallel()
		counts := table.CountByProvenance()
		assert.Equal(t, 3, counts[ProvMapped])
		assert.Equal(t, 1, counts[ProvDerived])
		assert.Equal(t, 1, counts[ProvFallback])
		assert.Equal(t, 1, counts[ProvUnresolved])
	})
}

func TestResolutionTableSparse(t *testing.T) {
	t.Parallel()

	table := NewResolutionTable([]string{"Revenue"}, []string{"202303", "202403"})
	table.Put(ResolvedValue{Target: "Revenue", Year: "202403", Value: 4000, Provenance: ProvMapped})

	t.Run("All skips unwritten cells", func(t *testing.T) {
		t.Parallel()
		all := table.All()
		require.Len(t, all, 1)
		assert.Equal(t, "202403", all[0].Year)
	})

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()
		dup := NewResolutionTable([]string{"Revenue"}, []string{"202403"})
		dup.Put(ResolvedValue{Target: "Revenue", Year: "202403", Value: 1, Provenance: ProvMapped})
		dup.Put(ResolvedValue{Target: "Revenue", Year: "202403", Value: 2, Provenance: ProvFallback})
		v, ok := dup.Get("Revenue", "202403")
		require.True(t, ok)
		assert.Equal(t, 2.0, v.Value)
		assert.Equal(t, ProvFallback, v.Provenance)
	})
}
