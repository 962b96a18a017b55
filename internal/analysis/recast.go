package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/crestline-research/finmap/internal/model"
)

// RecastYear is the Penman-Nissim operating/financing split for one fiscal
// year. Nil means the split could not be formed from resolved inputs.
type RecastYear struct {
	Year string `json:"year"`

	OperatingAssets         *float64 `json:"operating_assets,omitempty"`
	FinancialAssets         *float64 `json:"financial_assets,omitempty"`
	OperatingLiabilities    *float64 `json:"operating_liabilities,omitempty"`
	FinancialLiabilities    *float64 `json:"financial_liabilities,omitempty"`
	NetOperatingAssets      *float64 `json:"net_operating_assets,omitempty"`
	NetFinancialObligations *float64 `json:"net_financial_obligations,omitempty"`
	CommonEquity            *float64 `json:"common_equity,omitempty"`
	EquityGap               *float64 `json:"equity_gap,omitempty"`

	Revenue               *float64 `json:"revenue,omitempty"`
	EBIT                  *float64 `json:"ebit,omitempty"`
	NOPAT                 *float64 `json:"nopat,omitempty"`
	NetIncome             *float64 `json:"net_income,omitempty"`
	NetFinancialExpenseAT *float64 `json:"net_financial_expense_at,omitempty"`
	EffectiveTaxRate      float64  `json:"effective_tax_rate"`
}

// RecastRatios are the Penman-Nissim profitability ratios for one year.
// ROEPN is the decomposed ROE (RNOA + FLEV x Spread); Reconciled reports
// whether it agrees with the directly measured ROE within two points.
type RecastRatios struct {
	Year       string   `json:"year"`
	RNOA       *float64 `json:"rnoa,omitempty"`
	NBC        *float64 `json:"nbc,omitempty"`
	FLEV       *float64 `json:"flev,omitempty"`
	Spread     *float64 `json:"spread,omitempty"`
	ROE        *float64 `json:"roe,omitempty"`
	ROEPN      *float64 `json:"roe_pn,omitempty"`
	ROEGap     *float64 `json:"roe_gap,omitempty"`
	Reconciled bool     `json:"reconciled"`
}

// Recast is the full Penman-Nissim reformulation across years.
type Recast struct {
	Years       []RecastYear   `json:"years"`
	Ratios      []RecastRatios `json:"ratios"`
	Assumptions []string       `json:"assumptions,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// ComputeRecast reformulates the balance sheet into operating and financing
// books and decomposes ROE. For holding and investment companies the
// securities book counts as operating, because trading it is the business.
func ComputeRecast(table *model.ResolutionTable, profile CompanyProfile) *Recast {
	treatInvAsOperating := profile.IsHolding || profile.IsInvestment

	assumptions := make(map[string]struct{})
	warnings := make(map[string]struct{})
	rc := &Recast{}

	for _, y := range table.Years {
		pk := func(target string) *float64 {
			if v, ok := table.Value(target, y); ok {
				return ptr(v)
			}
			return nil
		}
		assume := func(target string) float64 {
			if v, ok := table.Value(target, y); ok {
				return v
			}
			assumptions[fmt.Sprintf("%s: %s assumed 0", y, target)] = struct{}{}
			return 0
		}

		ta := pk("Total Assets")
		te := pk("Total Equity")
		totalCash := sumPtr(pk("Cash and Cash Equivalents"), pk("Bank Balances"))

		stInv := assume("Short-term Investments")
		ltInv := assume("Long-term Investments")
		fl := ptr(assume("Short-term Debt") + assume("Long-term Debt") + assume("Lease Liabilities"))

		fa := totalCash
		if !treatInvAsOperating {
			fa = sumPtr(totalCash, ptr(stInv), ptr(ltInv))
		}

		var oa *float64
		if ta != nil && fa != nil {
			oa = ptr(*ta - *fa)
		}

		tl := pk("Total Liabilities")
		if tl == nil && ta != nil && te != nil {
			tl = ptr(*ta - *te)
		}
		var ol *float64
		if tl != nil {
			ol = ptr(math.Max(*tl-*fl, 0))
		}

		var noa, nfo *float64
		if oa != nil && ol != nil {
			noa = ptr(*oa - *ol)
		}
		if fa != nil {
			nfo = ptr(*fl - *fa)
		}

		ry := RecastYear{
			Year:                    y,
			OperatingAssets:         oa,
			FinancialAssets:         fa,
			OperatingLiabilities:    ol,
			FinancialLiabilities:    fl,
			NetOperatingAssets:      noa,
			NetFinancialObligations: nfo,
			CommonEquity:            te,
		}
		if noa != nil && nfo != nil && te != nil {
			gap := *noa - *nfo - *te
			ry.EquityGap = ptr(gap)
			if math.Abs(gap) >= 0.01 {
				warnings[fmt.Sprintf("%s: NOA - NFO does not reconcile to equity (gap %.2f)", y, gap)] = struct{}{}
			}
		}

		// Income split. Exceptional items sit inside reported pre-tax profit
		// and must come out before the operating tax allocation.
		rev := pk("Revenue")
		pbt := pk("Income Before Tax")
		tax := pk("Tax Expense")
		ni := pk("Net Income")
		fc := assume("Interest Expense")
		oi := assume("Other Income")
		exc := assume("Exceptional Items")

		var recurringPBT, ebit, oibt *float64
		if pbt != nil {
			recurringPBT = ptr(*pbt - exc)
			ebit = ptr(*recurringPBT + fc)
			if treatInvAsOperating {
				oibt = ebit
			} else {
				oibt = ptr(*ebit - oi)
			}
		}

		effTax := 0.25
		switch {
		case recurringPBT != nil && *recurringPBT > 0 && tax != nil:
			effTax = clamp(*tax / *recurringPBT, 0.05, 0.50)
		case pbt != nil && *pbt > 0 && tax != nil:
			effTax = clamp(*tax / *pbt, 0.05, 0.50)
		default:
			assumptions[y+": effective tax rate defaulted to 25%"] = struct{}{}
		}

		finIncome := oi
		if treatInvAsOperating {
			finIncome = 0
		}
		var nopat *float64
		if oibt != nil {
			nopat = ptr(*oibt * (1 - effTax))
		}

		ry.Revenue = rev
		ry.EBIT = ebit
		ry.NOPAT = nopat
		ry.NetIncome = ni
		ry.NetFinancialExpenseAT = ptr((fc - finIncome) * (1 - effTax))
		ry.EffectiveTaxRate = effTax

		rc.Years = append(rc.Years, ry)
	}

	rc.computeRatios(warnings)

	for a := range assumptions {
		rc.Assumptions = append(rc.Assumptions, a)
	}
	sort.Strings(rc.Assumptions)
	for w := range warnings {
		rc.Warnings = append(rc.Warnings, w)
	}
	sort.Strings(rc.Warnings)
	return rc
}

func (rc *Recast) computeRatios(warnings map[string]struct{}) {
	for i, ry := range rc.Years {
		var prev *RecastYear
		if i > 0 {
			prev = &rc.Years[i-1]
		}
		avg := func(pick func(*RecastYear) *float64) *float64 {
			curr := pick(&rc.Years[i])
			if prev == nil {
				return curr
			}
			return avgOf(pick(prev), curr)
		}

		avgNOA := avg(func(r *RecastYear) *float64 { return r.NetOperatingAssets })
		avgNFO := avg(func(r *RecastYear) *float64 { return r.NetFinancialObligations })
		avgCSE := avg(func(r *RecastYear) *float64 { return r.CommonEquity })
		avgOA := avg(func(r *RecastYear) *float64 { return r.OperatingAssets })

		var avgTA float64
		if avgOA != nil {
			if avgFA := avg(func(r *RecastYear) *float64 { return r.FinancialAssets }); avgFA != nil {
				avgTA = *avgOA + *avgFA
			}
		}

		nopat := deref0(ry.NOPAT)
		nfeAT := deref0(ry.NetFinancialExpenseAT)
		fl := deref0(ry.FinancialLiabilities)

		rr := RecastRatios{Year: ry.Year}

		// RNOA turns meaningless when the net operating book is a sliver of
		// the balance sheet; fall back to the gross operating-asset base.
		if avgNOA != nil {
			materiality := math.Max(10, math.Abs(avgTA)*0.05)
			switch {
			case math.Abs(*avgNOA) > materiality:
				rr.RNOA = ptr(clamp(nopat / *avgNOA * 100, -1000, 1000))
			case avgOA != nil && math.Abs(*avgOA) > 10:
				rr.RNOA = ptr(clamp(nopat / *avgOA * 100, -1000, 1000))
				warnings[ry.Year+": net operating assets are small, RNOA measured on the gross operating-asset base"] = struct{}{}
			default:
				warnings[ry.Year+": net operating assets too small for a stable RNOA"] = struct{}{}
			}
		}

		if avgNFO != nil && math.Abs(*avgNFO) > 10 && nfeAT != 0 {
			rr.NBC = ptr(clamp(nfeAT / *avgNFO * 100, -15, 25))
		} else if fl <= 10 {
			rr.NBC = ptr(0)
		}

		if avgCSE != nil && math.Abs(*avgCSE) > 10 && avgNFO != nil {
			rr.FLEV = ptr(*avgNFO / *avgCSE)
		}
		if rr.RNOA != nil && rr.NBC != nil {
			rr.Spread = ptr(*rr.RNOA - *rr.NBC)
		}

		if avgCSE != nil && math.Abs(*avgCSE) > 10 {
			rr.ROE = ptr(deref0(ry.NetIncome) / *avgCSE * 100)
		}
		if rr.RNOA != nil && rr.FLEV != nil && rr.Spread != nil {
			rr.ROEPN = ptr(*rr.RNOA + *rr.FLEV**rr.Spread)
			if rr.ROE != nil {
				gap := math.Abs(*rr.ROE - *rr.ROEPN)
				rr.ROEGap = ptr(gap)
				rr.Reconciled = gap <= 2
			}
		}

		rc.Ratios = append(rc.Ratios, rr)
	}
}

func deref0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func sumPtr(vals ...*float64) *float64 {
	var total float64
	found := false
	for _, v := range vals {
		if v != nil {
			total += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}
