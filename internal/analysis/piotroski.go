package analysis

import (
	"fmt"

	"github.com/crestline-research/finmap/internal/model"
)

// Signal is one Piotroski test with the inputs that decided it, each tagged
// with its resolution provenance.
type Signal struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
}

// FScore is the Piotroski F-Score for one fiscal year. Max is 3 for the
// first covered year, where the six year-over-year signals have no prior to
// compare against, and 9 afterwards.
type FScore struct {
	Score   int      `json:"score"`
	Max     int      `json:"max"`
	Signals []Signal `json:"signals"`
}

// ComputePiotroski scores every year with positive total assets.
func ComputePiotroski(table *model.ResolutionTable) map[string]FScore {
	out := make(map[string]FScore)
	f := newFigures(table)
	years := table.Years

	for i, y := range years {
		ta, ok := table.Value("Total Assets", y)
		if !ok || ta <= 0 {
			continue
		}

		var fs FScore
		add := func(name string, pass bool, detail string) {
			fs.Signals = append(fs.Signals, Signal{Name: name, Pass: pass, Detail: detail})
			fs.Max++
			if pass {
				fs.Score++
			}
		}

		ni := f.opt("Net Income", y)
		ocf := f.opt("Operating Cash Flow", y)

		add("positive return on assets", ni > 0,
			f.describe("Net Income", y)+", "+f.describe("Total Assets", y))
		add("positive operating cash flow", ocf > 0,
			f.describe("Operating Cash Flow", y))
		add("cash flow exceeds net income", ocf > ni,
			f.describe("Operating Cash Flow", y)+", "+f.describe("Net Income", y))

		if i == 0 {
			out[y] = fs
			continue
		}
		prevYear := years[i-1]
		prevTA, okPrevTA := table.Value("Total Assets", prevYear)
		if !okPrevTA || prevTA <= 0 {
			for _, name := range []string{
				"improving return on assets", "lower leverage", "improving current ratio",
				"no new share issuance", "improving gross margin", "improving asset turnover",
			} {
				add(name, false, "prior year Total Assets unresolved")
			}
			out[y] = fs
			continue
		}

		prevNI := f.opt("Net Income", prevYear)
		add("improving return on assets", ni/ta > prevNI/prevTA,
			fmt.Sprintf("ROA %.4f vs %.4f", ni/ta, prevNI/prevTA))

		ltd := f.opt("Long-term Debt", y)
		prevLTD := f.opt("Long-term Debt", prevYear)
		lev, prevLev := ltd/ta, prevLTD/prevTA
		add("lower leverage", lev < prevLev || (ltd == 0 && prevLTD == 0),
			fmt.Sprintf("long-term debt/assets %.4f vs %.4f", lev, prevLev))

		cr := currentRatio(f, y)
		prevCR := currentRatio(f, prevYear)
		add("improving current ratio", cr > prevCR,
			fmt.Sprintf("current ratio %.3f vs %.3f", cr, prevCR))

		sc, okSC := f.peek("Share Capital", y)
		prevSC, okPrevSC := f.peek("Share Capital", prevYear)
		switch {
		case okSC && okPrevSC:
			add("no new share issuance", sc <= prevSC,
				fmt.Sprintf("share capital %.2f vs %.2f", sc, prevSC))
		default:
			add("no new share issuance", false, "Share Capital unresolved")
		}

		rev := f.opt("Revenue", y)
		prevRev := f.opt("Revenue", prevYear)
		cogs, okCOGS := f.peek("Cost of Goods Sold", y)
		prevCOGS, okPrevCOGS := f.peek("Cost of Goods Sold", prevYear)
		if rev > 0 && prevRev > 0 && okCOGS && okPrevCOGS {
			gm, prevGM := (rev-cogs)/rev, (prevRev-prevCOGS)/prevRev
			add("improving gross margin", gm > prevGM,
				fmt.Sprintf("gross margin %.4f vs %.4f", gm, prevGM))
		} else {
			add("improving gross margin", false, "Revenue or Cost of Goods Sold unresolved")
		}

		if rev > 0 && prevRev > 0 {
			add("improving asset turnover", rev/ta > prevRev/prevTA,
				fmt.Sprintf("asset turnover %.4f vs %.4f", rev/ta, prevRev/prevTA))
		} else {
			add("improving asset turnover", false, "Revenue unresolved")
		}

		out[y] = fs
	}
	return out
}

func currentRatio(f *figures, year string) float64 {
	ca := f.opt("Current Assets", year)
	cl := f.opt("Current Liabilities", year)
	if cl <= 0 {
		return 0
	}
	return ca / cl
}
