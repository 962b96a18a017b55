package ingest

import (
	"regexp"
	"strings"

	"github.com/crestline-research/finmap/internal/model"
)

// Keyword vocabularies for statement classification. Cash-flow phrases are
// rare and specific, so each vote counts three; the denser profit-and-loss
// and balance-sheet vocabularies count one per hit.
var (
	cashFlowWords = []string{
		"cash flow", "operating activities", "investing activities",
		"financing activities", "capex", "capital expenditure",
		"net cash", "free cash",
	}
	profitLossWords = []string{
		"revenue", "sales", "income", "profit", "loss", "expense", "cost",
		"ebit", "ebitda", "tax", "interest", "depreciation", "dividend",
		"earning", "margin", "turnover",
	}
	balanceSheetWords = []string{
		"asset", "liability", "equity", "capital", "reserve", "receivable",
		"payable", "inventory", "inventories", "borrowing", "debt",
		"investment", "property", "goodwill", "cash", "bank", "provision",
		"intangible", "net worth",
	}
)

// ClassifyLabel guesses which statement a bare metric label belongs to.
// Labels with no vocabulary hits stay Financial, the wildcard statement.
func ClassifyLabel(label string) model.Statement {
	low := strings.ToLower(label)

	var cf, pl, bs int
	for _, w := range cashFlowWords {
		if strings.Contains(low, w) {
			cf += 3
		}
	}
	for _, w := range profitLossWords {
		if strings.Contains(low, w) {
			pl++
		}
	}
	for _, w := range balanceSheetWords {
		if strings.Contains(low, w) {
			bs++
		}
	}

	switch {
	case cf > pl && cf > bs:
		return model.CashFlow
	case bs > pl:
		return model.BalanceSheet
	case pl > 0:
		return model.ProfitLoss
	default:
		return model.Financial
	}
}

// ClassifySource guesses the statement from a sheet or file name.
func ClassifySource(name string) model.Statement {
	s := strings.ToLower(name)
	switch {
	case containsAny(s, "cash", "flow", "cf"):
		return model.CashFlow
	case containsAny(s, "profit", "loss", "p&l", "pl", "income"):
		return model.ProfitLoss
	case containsAny(s, "balance", "bs", "position", "sources", "funds"):
		return model.BalanceSheet
	default:
		return model.Financial
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var (
	reLeadingMarker = regexp.MustCompile(`(?i)^[A-Z]\.|^[0-9]+\.?\s*`)
	reSeparators    = regexp.MustCompile(`[_:]+`)
	reWhitespace    = regexp.MustCompile(`\s+`)
)

// CleanLabel strips list numbering ("1. ", "B.") and separator noise from a
// vendor metric label.
func CleanLabel(name string) string {
	name = strings.TrimSpace(name)
	name = reLeadingMarker.ReplaceAllString(name, "")
	name = reSeparators.ReplaceAllString(name, " ")
	name = reWhitespace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
