package registry

import "github.com/crestline-research/finmap/internal/model"

// builtinFallbacks is the shipped fallback-scan table: for each target, the
// narrower secondary patterns the waterfall may search after the direct
// mapping came up missing or implausible. Patterns are deliberately tighter
// than the target's primary include list so the scan cannot re-open the
// ambiguity the mapper already settled.
var builtinFallbacks = []model.FallbackRule{
	{
		// The header row "Capital Expenditure" can be a zero placeholder
		// while the real spend sits under fixed-asset purchase sub-lines.
		// The DirectRatio guard also forces the fallback when the header row
		// carries a token value dwarfed by the purchase lines.
		Target:    "Capital Expenditure",
		Statement: model.CashFlow,
		Patterns: []string{
			"purchase of property plant and equipment",
			"purchased of property plant and equipment",
			"purchase of fixed assets",
			"purchased of fixed assets",
			"purchase of fixed asset",
			"purchased of fixed asset",
			"acquisition of property plant and equipment",
			"payment for property plant and equipment",
			"additions to fixed assets",
			"additions to property plant and equipment",
			"capital wip",
			"capital work in progress",
			"purchase of tangible assets",
			"purchase of intangible assets",
			"capex",
		},
		SkipLabels:  []string{"capital expenditure"},
		DirectRatio: 0.01,
	},
	{
		// If a zero-value component row (raw materials, stores) took the
		// Inventory slot, the true total still sits on one of the exact
		// total lines.
		Target:    "Inventory",
		Statement: model.BalanceSheet,
		Patterns:  []string{"inventories", "total inventory", "total inventories"},
		ExactOnly: true,
		Skip:      []string{"changes in inventories", "non current portion"},
	},
	{
		Target:    "Revenue",
		Statement: model.ProfitLoss,
		Patterns:  []string{"revenue from operations", "net sales", "sales turnover"},
	},
	{
		Target:    "Net Income",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"profit after tax", "profit for the year", "profit for the period",
			"profit attributable to shareholders",
		},
	},
	{
		Target:    "Current Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"total current assets"},
	},
	{
		Target:    "Current Liabilities",
		Statement: model.BalanceSheet,
		Patterns:  []string{"total current liabilities"},
	},
	{
		Target:    "Tax Expense",
		Statement: model.ProfitLoss,
		Patterns:  []string{"tax expense", "tax expenses", "provision for tax", "income tax expense"},
	},
}
