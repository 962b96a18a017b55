package model

// Statement identifies which financial statement a row or target belongs to.
type Statement string

const (
	BalanceSheet Statement = "BalanceSheet"
	ProfitLoss   Statement = "ProfitLoss"
	CashFlow     Statement = "CashFlow"

	// Financial holds standalone market and share figures that sit outside the
	// three statements. Rows classified Financial are not statement-gated and
	// may match targets from any statement; targets gated Financial accept
	// only Financial rows.
	Financial Statement = "Financial"
)

// Valid reports whether s is one of the four known statements.
func (s Statement) Valid() bool {
	switch s {
	case BalanceSheet, ProfitLoss, CashFlow, Financial:
		return true
	}
	return false
}

// Gates reports whether a row from statement s may be considered for a target
// gated to stmt. Financial rows pass every gate.
func (s Statement) Gates(stmt Statement) bool {
	return s == Financial || s == stmt
}
