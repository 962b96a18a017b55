package registry

import "github.com/crestline-research/finmap/internal/model"

// builtinTiebreaks is the shipped tiebreak table. Each rule corrects one
// documented Capitaline collision where two rows score identically for the
// same target and row order would otherwise decide; the bonus pushes the
// aggregate / canonical row ahead of the sub-item or zero-placeholder row.
// Bonuses never exceed 0.01 so a vetoed or gated-out candidate can never be
// rescued by one.
var builtinTiebreaks = []model.TiebreakRule{
	{
		Target:      "Revenue",
		Bonus:       0.001,
		ContainsAny: []string{"net"},
		Note:        "net revenue preferred over gross",
	},
	{
		Target:    "Capital Expenditure",
		Bonus:     0.001,
		EqualsAny: []string{"capital expenditure"},
		Note:      "total capex line preferred over PPE purchase sub-lines",
	},
	{
		Target:      "Tax Expense",
		Bonus:       0.001,
		ContainsAny: []string{"tax expense", "tax expenses", "provision for tax", "income tax expense"},
		Note:        "total tax line preferred over current/deferred components",
	},
	{
		Target:    "Total Equity",
		Bonus:     0.002,
		EqualsAny: []string{"total equity"},
		Note:      "exact total equity preferred over stockholders-funds variants",
	},
	{
		Target:    "Total Assets",
		Bonus:     0.002,
		EqualsAny: []string{"total assets"},
		Note:      "exact total assets preferred over total equity and liabilities",
	},
	{
		Target:    "Inventory",
		Bonus:     0.003,
		EqualsAny: []string{"inventories", "total inventory", "total inventories"},
		Note:      "inventory total lines preferred over component rows",
	},
	{
		Target:    "Income Before Tax",
		Bonus:     0.003,
		EqualsAny: []string{"profit before tax"},
		Note:      "fully reported PBT preferred over pre-exceptional variant",
	},
	{
		Target: "Cost of Goods Sold",
		Bonus:  0.002,
		EqualsAny: []string{
			"cost of goods sold", "cost of material consumed", "cost of materials consumed",
			"cost of revenue", "total cost of goods sold",
		},
		Note: "primary COGS labels preferred over raw-material sub-totals",
	},
	{
		Target:      "Bank Balances",
		Bonus:       0.003,
		ContainsAny: []string{"bank balances other than"},
		Note:        "other-than-cash aggregate preferred over margin-money catch-all",
	},
	{
		Target:    "Current Tax Liabilities",
		Bonus:     0.003,
		EqualsAny: []string{"current tax liabilities short term"},
		Note:      "short-term line preferred over income tax liability",
	},
	{
		Target:    "Long-term Investments",
		Bonus:     0.003,
		EqualsAny: []string{"investments long term", "total investments"},
		Note:      "aggregate investment lines preferred over subsidiary sub-items",
	},
	{
		Target: "Selling Expenses",
		Bonus:  0.003,
		EqualsAny: []string{
			"selling and administration expenses",
			"total selling administrative expenses",
			"total selling and distribution expenses",
			"total selling distribution expenses",
		},
		Note: "selling totals preferred over zero-value marketing sub-line",
	},
}
