package analysis

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// resolved builds a table of mapped values, target -> year -> value.
func resolved(years []string, cells map[string]map[string]float64) *model.ResolutionTable {
	targets := make([]string, 0, len(cells))
	for t := range cells {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	table := model.NewResolutionTable(targets, years)
	for target, byYear := range cells {
		for year, v := range byYear {
			table.Put(model.ResolvedValue{
				Target:     target,
				Year:       year,
				Value:      v,
				Provenance: model.ProvMapped,
			})
		}
	}
	return table
}

func TestDetectProfileInvestmentCompany(t *testing.T) {
	table := resolved([]string{"202403"}, map[string]map[string]float64{
		"Total Assets":          {"202403": 1000},
		"Long-term Investments": {"202403": 600},
		"Inventory":             {"202403": 10},
		"Revenue":               {"202403": 80},
		"Other Income":          {"202403": 40},
	})

	p := detectProfile(table, table.Years)
	assert.True(t, p.IsInvestment)
	assert.True(t, p.IsHolding)
	assert.False(t, p.HasDebt)
	assert.InDelta(t, 0.6, p.InvestmentAssetRatio, 1e-9)
	assert.Contains(t, p.Characteristics, "high investment concentration (60% of assets)")
	assert.Contains(t, p.Characteristics, "debt-free")
}

func TestDetectProfileOperatingCompany(t *testing.T) {
	table := resolved([]string{"202403"}, map[string]map[string]float64{
		"Total Assets":   {"202403": 1000},
		"Inventory":      {"202403": 200},
		"Long-term Debt": {"202403": 300},
		"Revenue":        {"202403": 1500},
	})

	p := detectProfile(table, table.Years)
	assert.False(t, p.IsInvestment)
	assert.False(t, p.IsHolding)
	assert.True(t, p.HasDebt)
}

func TestAnalyzeProducesAllBlocks(t *testing.T) {
	years := []string{"202303", "202403"}
	cells := map[string]map[string]float64{
		"Total Assets":        {"202303": 1800, "202403": 2000},
		"Total Equity":        {"202303": 700, "202403": 800},
		"Total Liabilities":   {"202303": 1100, "202403": 1200},
		"Current Assets":      {"202303": 600, "202403": 700},
		"Current Liabilities": {"202303": 320, "202403": 350},
		"Net Income":          {"202303": 120, "202403": 150},
		"Revenue":             {"202303": 1000, "202403": 1200},
		"EBIT":                {"202303": 220, "202403": 250},
		"Operating Cash Flow": {"202303": 240, "202403": 300},
		"Retained Earnings":   {"202303": 400, "202403": 500},
	}
	ds := &model.Dataset{Company: "Test Ltd", Years: years}
	res := Analyze(ds, resolved(years, cells))

	assert.Equal(t, "Test Ltd", res.Company)
	assert.NotEmpty(t, res.Ratios.Liquidity)
	assert.Contains(t, res.Trends, "Revenue")
	assert.Contains(t, res.DuPont, "202403")
	assert.Contains(t, res.Altman, "202403")
	assert.Contains(t, res.Piotroski, "202403")
	assert.Len(t, res.Recast.Years, 2)
}
