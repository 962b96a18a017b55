package registry

import "github.com/crestline-research/finmap/internal/model"

func plus(target string) model.Term  { return model.Term{Target: target, Sign: +1} }
func minus(target string) model.Term { return model.Term{Target: target, Sign: -1} }

// builtinFormulas is the shipped derivation table. Alternatives are tried in
// order; an alternative contributes only when every operand resolves for the
// year. Load-time validation rejects any cycle over the union of alternative
// edges, so resolution never has to.
var builtinFormulas = []model.Formula{
	{
		Target: "Total Equity",
		Alternatives: [][]model.Term{
			{plus("Share Capital"), plus("Retained Earnings")},
			{plus("Share Capital")},
		},
	},
	{
		Target: "Total Liabilities",
		Alternatives: [][]model.Term{
			{plus("Total Assets"), minus("Total Equity")},
			{plus("Current Liabilities"), plus("Non-Current Liabilities")},
		},
	},
	{
		Target: "EBIT",
		Alternatives: [][]model.Term{
			{plus("Income Before Tax"), plus("Interest Expense")},
			{plus("Operating Income")},
			{plus("Income Before Tax")},
		},
	},
	{
		Target: "EBITDA",
		Alternatives: [][]model.Term{
			{plus("EBIT"), plus("Depreciation")},
			{plus("EBIT")},
		},
	},
	{
		Target: "Revenue",
		Alternatives: [][]model.Term{
			{plus("Total Revenue"), minus("Other Income")},
			{plus("Total Revenue")},
		},
	},
	{
		Target: "Total Assets",
		Alternatives: [][]model.Term{
			{plus("Current Assets"), plus("Non-Current Assets")},
		},
	},
	{
		Target: "Gross Profit",
		Alternatives: [][]model.Term{
			{plus("Revenue"), minus("Cost of Goods Sold")},
		},
	},
	{
		// The first alternative handles consolidated statements where the
		// minority share is broken out; standalone exports resolve through
		// the second.
		Target: "Net Income",
		Alternatives: [][]model.Term{
			{plus("Income Before Tax"), minus("Tax Expense"), minus("Minority Earnings")},
			{plus("Income Before Tax"), minus("Tax Expense")},
		},
	},
	{
		// Section nets carry their native signs in cash flow exports, so the
		// plain sum is the net movement.
		Target: "Net Change in Cash",
		Alternatives: [][]model.Term{
			{plus("Operating Cash Flow"), plus("Investing Cash Flow"), plus("Financing Cash Flow")},
		},
	},
}
