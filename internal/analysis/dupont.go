package analysis

import "github.com/crestline-research/finmap/internal/model"

// DuPontYear is the three-factor ROE decomposition for one fiscal year:
// ROE = margin x turnover x leverage.
type DuPontYear struct {
	NetProfitMargin  float64 `json:"net_profit_margin"`
	AssetTurnover    float64 `json:"asset_turnover"`
	EquityMultiplier float64 `json:"equity_multiplier"`
	ROE              float64 `json:"roe"`
}

// ComputeDuPont decomposes ROE for every year where all four inputs resolve
// non-zero.
func ComputeDuPont(table *model.ResolutionTable) map[string]DuPontYear {
	out := make(map[string]DuPontYear)
	for _, y := range table.Years {
		ni, okNI := table.Value("Net Income", y)
		rev, okRev := table.Value("Revenue", y)
		ta, okTA := table.Value("Total Assets", y)
		te, okTE := table.Value("Total Equity", y)
		if !okNI || !okRev || !okTA || !okTE {
			continue
		}
		if ni == 0 || rev == 0 || ta == 0 || te == 0 {
			continue
		}
		out[y] = DuPontYear{
			NetProfitMargin:  ni / rev * 100,
			AssetTurnover:    rev / ta,
			EquityMultiplier: ta / te,
			ROE:              ni / te * 100,
		}
	}
	return out
}
