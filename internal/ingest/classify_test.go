package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crestline-research/finmap/internal/model"
)

func TestClassifyLabel(t *testing.T) {
	cases := []struct {
		label string
		want  model.Statement
	}{
		{"Net Cash from Operating Activities", model.CashFlow},
		{"Capital Expenditure", model.CashFlow},
		{"Purchase of Fixed Assets", model.BalanceSheet},
		{"Total Assets", model.BalanceSheet},
		{"Total Equity", model.BalanceSheet},
		{"Inventories", model.BalanceSheet},
		{"Revenue from Operations", model.ProfitLoss},
		{"Net Income", model.ProfitLoss},
		{"Tax Expense", model.ProfitLoss},
		{"Particulars", model.Financial},
		{"", model.Financial},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyLabel(tc.label))
		})
	}
}

func TestClassifySource(t *testing.T) {
	cases := []struct {
		name string
		want model.Statement
	}{
		{"CashFlow_(4).xls", model.CashFlow},
		{"Cash Flow Statement", model.CashFlow},
		{"ProfitLossINDAS_(5).xls", model.ProfitLoss},
		{"Income Statement", model.ProfitLoss},
		{"BalanceSheetINDAS.xls", model.BalanceSheet},
		{"Statement of Financial Position", model.BalanceSheet},
		{"SourcesOfFunds.xls", model.BalanceSheet},
		{"data.xlsx", model.Financial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySource(tc.name))
		})
	}
}

func TestCleanLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1. Revenue from Operations", "Revenue from Operations"},
		{"12 Other Income", "Other Income"},
		{"B. Total Income", "Total Income"},
		{"Net_Profit:After_Tax", "Net Profit After Tax"},
		{"  Total   Assets  ", "Total Assets"},
		{"Inventories", "Inventories"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanLabel(tc.in))
		})
	}
}
