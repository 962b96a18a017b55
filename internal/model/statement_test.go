package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementValid(t *testing.T) {
	t.Parallel()

	t.Run("known statements are valid", func(t *testing.T) {
		t.Parallel()
		for _, s := range []Statement{BalanceSheet, ProfitLoss, CashFlow, Financial} {
			assert.True(t, s.Valid(), "statement %s", s)
		}
	})

	t.Run("unknown statement is invalid", func(t *testing.T) {
		t.Parallel()
		assert.False(t, Statement("IncomeStatement").Valid())
		assert.False(t, Statement("").Valid())
	})
}

func TestStatementGates(t *testing.T) {
	t.Parallel()

	t.Run("same statement passes", func(t *testing.T) {
		t.Parallel()
		assert.True(t, BalanceSheet.Gates(BalanceSheet))
		assert.True(t, ProfitLoss.Gates(ProfitLoss))
	})

	t.Run("different statement fails", func(t *testing.T) {
		t.Parallel()
		assert.False(t, BalanceSheet.Gates(ProfitLoss))
		assert.False(t, CashFlow.Gates(BalanceSheet))
	})

	t.Run("financial row passes every gate", func(t *testing.T) {
		t.Parallel()
		for _, gate := range []Statement{BalanceSheet, ProfitLoss, CashFlow, Financial} {
			assert.True(t, Financial.Gates(gate), "gate %s", gate)
		}
	})

	t.Run("non financial row fails financial gate", func(t *testing.T) {
		t.Parallel()
		assert.False(t, BalanceSheet.Gates(Financial))
	})
}
