package analysis

import (
	"math"

	"github.com/crestline-research/finmap/internal/model"
)

// RatioGroup holds one family of ratios, ratio name -> fiscal year -> value.
type RatioGroup map[string]map[string]float64

func (g RatioGroup) put(name, year string, v float64) {
	byYear, ok := g[name]
	if !ok {
		byYear = make(map[string]float64)
		g[name] = byYear
	}
	byYear[year] = v
}

// Ratios is the per-year ratio suite. A ratio absent for a year means an
// input was unresolved or a denominator degenerate; Notes lists the
// unresolved inputs.
type Ratios struct {
	Liquidity      RatioGroup `json:"liquidity,omitempty"`
	Profitability  RatioGroup `json:"profitability,omitempty"`
	Leverage       RatioGroup `json:"leverage,omitempty"`
	Efficiency     RatioGroup `json:"efficiency,omitempty"`
	WorkingCapital RatioGroup `json:"working_capital,omitempty"`
	CashFlow       RatioGroup `json:"cash_flow,omitempty"`
	Notes          []string   `json:"notes,omitempty"`
}

// ComputeRatios builds the ratio suite for every year of the table.
func ComputeRatios(table *model.ResolutionTable) *Ratios {
	f := newFigures(table)
	r := &Ratios{
		Liquidity:      RatioGroup{},
		Profitability:  RatioGroup{},
		Leverage:       RatioGroup{},
		Efficiency:     RatioGroup{},
		WorkingCapital: RatioGroup{},
		CashFlow:       RatioGroup{},
	}

	for _, y := range table.Years {
		r.liquidity(f, y)
		r.profitability(f, y)
		r.leverage(f, y)
		r.efficiency(f, y)
		r.workingCapital(f, y)
		r.cashFlow(f, y)
	}
	r.Notes = f.notes()
	return r
}

func (r *Ratios) liquidity(f *figures, y string) {
	ca, okCA := f.get("Current Assets", y)
	cl, okCL := f.get("Current Liabilities", y)
	if okCA && okCL && ca != 0 && cl != 0 {
		r.Liquidity.put("Current Ratio", y, ca/cl)
		inv := f.opt("Inventory", y)
		r.Liquidity.put("Quick Ratio", y, (ca-inv)/cl)
	}
	if cash, ok := f.get("Cash and Cash Equivalents", y); ok && cash != 0 && okCL && cl != 0 {
		r.Liquidity.put("Cash Ratio", y, cash/cl)
	}
}

func (r *Ratios) profitability(f *figures, y string) {
	ni, okNI := f.get("Net Income", y)
	rev, okRev := f.get("Revenue", y)
	ta, okTA := f.get("Total Assets", y)
	te, okTE := f.get("Total Equity", y)

	if okNI && okRev && ni != 0 && rev != 0 {
		r.Profitability.put("Net Profit Margin %", y, ni/rev*100)
	}
	if cogs, ok := f.peek("Cost of Goods Sold", y); ok && cogs != 0 && okRev && rev != 0 {
		r.Profitability.put("Gross Profit Margin %", y, (rev-cogs)/rev*100)
	}
	if okNI && okTA && ni != 0 && ta != 0 {
		r.Profitability.put("ROA %", y, ni/ta*100)
	}
	if okNI && okTE && ni != 0 && te != 0 {
		r.Profitability.put("ROE %", y, ni/te*100)
	}
	ebit, okEBIT := f.get("EBIT", y)
	if okEBIT && ebit != 0 && okRev && rev != 0 {
		r.Profitability.put("Operating Margin %", y, ebit/rev*100)
		if dep, ok := f.peek("Depreciation", y); ok && dep != 0 {
			r.Profitability.put("EBITDA Margin %", y, (ebit+dep)/rev*100)
		}
	}
}

func (r *Ratios) leverage(f *figures, y string) {
	tl, okTL := f.get("Total Liabilities", y)
	te, okTE := f.peek("Total Equity", y)
	ta, okTA := f.get("Total Assets", y)
	if !okTE && okTA && okTL {
		te, okTE = ta-tl, true
	}

	if okTL && okTE && tl != 0 && te != 0 {
		r.Leverage.put("Debt/Equity", y, tl/te)
	}
	if okTA && okTE && ta != 0 && te != 0 {
		r.Leverage.put("Equity Multiplier", y, ta/te)
	}

	ebit, okEBIT := f.get("EBIT", y)
	ie, okIE := f.peek("Interest Expense", y)
	switch {
	case okEBIT && ebit != 0 && okIE && ie > 0:
		r.Leverage.put("Interest Coverage", y, math.Min(ebit/ie, 999))
	case !okIE || ie == 0:
		// No interest burden on record: coverage is effectively unlimited.
		if okEBIT && ebit > 0 {
			r.Leverage.put("Interest Coverage", y, 999)
		}
	}
}

func (r *Ratios) efficiency(f *figures, y string) {
	rev, okRev := f.get("Revenue", y)
	ta, okTA := f.get("Total Assets", y)
	if okRev && okTA && rev != 0 && ta != 0 {
		r.Efficiency.put("Asset Turnover", y, rev/ta)
	}

	cogs, okCOGS := f.peek("Cost of Goods Sold", y)
	if inv, ok := f.peek("Inventory", y); ok && inv > 0 && okCOGS && cogs != 0 {
		r.Efficiency.put("Inventory Turnover", y, cogs/inv)
		r.Efficiency.put("Days Inventory", y, inv/(cogs/365))
	}
	if recv, ok := f.peek("Trade Receivables", y); ok && recv != 0 && okRev && rev > 0 {
		r.Efficiency.put("Days Receivable", y, recv/(rev/365))
	}
	if ap, ok := f.peek("Accounts Payable", y); ok && ap != 0 && okCOGS && cogs > 0 {
		r.Efficiency.put("Days Payable", y, ap/(cogs/365))
	}
}

func (r *Ratios) workingCapital(f *figures, y string) {
	ca, okCA := f.get("Current Assets", y)
	cl, okCL := f.get("Current Liabilities", y)
	if !okCA || !okCL || ca == 0 || cl == 0 {
		return
	}
	r.WorkingCapital.put("Working Capital", y, ca-cl)
	if rev, ok := f.get("Revenue", y); ok && rev != 0 {
		r.WorkingCapital.put("WC/Revenue %", y, (ca-cl)/rev*100)
	}
}

func (r *Ratios) cashFlow(f *figures, y string) {
	ocf, okOCF := f.get("Operating Cash Flow", y)
	if okOCF {
		r.CashFlow.put("Operating Cash Flow", y, ocf)
	}

	// Capital expenditure is reported signed in cash-flow statements; the
	// suite uses its magnitude.
	capex, okCapex := f.get("Capital Expenditure", y)
	if okCapex {
		r.CashFlow.put("Capital Expenditure", y, math.Abs(capex))
	}
	if okOCF && okCapex {
		r.CashFlow.put("Free Cash Flow", y, ocf-math.Abs(capex))
	}
}
