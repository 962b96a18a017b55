package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crestline-research/finmap/internal/model"
)

func TestFormatMapping(t *testing.T) {
	assignments := []model.Assignment{
		{
			Target:      "Total Assets",
			SourceLabel: "Total Assets",
			Statement:   model.BalanceSheet,
			Confidence:  0.985,
			Base:        0.980,
			Bonus:       0.005,
			Note:        "prefer aggregate row",
		},
		{
			Target:      "Revenue",
			SourceLabel: "Revenue from Operations",
			Statement:   model.ProfitLoss,
			Confidence:  0.980,
			Base:        0.980,
		},
	}

	var buf bytes.Buffer
	formatMapping(&buf, assignments)

	out := buf.String()
	assert.Contains(t, out, "TARGET")
	assert.Contains(t, out, "Total Assets")
	assert.Contains(t, out, "BS")
	assert.Contains(t, out, "+0.005")
	assert.Contains(t, out, "prefer aggregate row")
	assert.Contains(t, out, "Revenue from Operations")
	assert.Contains(t, out, "PL")
}

func TestShortStmt(t *testing.T) {
	assert.Equal(t, "BS", shortStmt(model.BalanceSheet))
	assert.Equal(t, "PL", shortStmt(model.ProfitLoss))
	assert.Equal(t, "CF", shortStmt(model.CashFlow))
	assert.Equal(t, "FIN", shortStmt(model.Financial))
}
