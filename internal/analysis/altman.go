package analysis

import (
	"math"

	"github.com/crestline-research/finmap/internal/model"
)

// Altman zones for the 1968 manufacturing Z-Score.
const (
	ZoneSafe     = "Safe"
	ZoneGrey     = "Grey"
	ZoneDistress = "Distress"
)

// AltmanZ is the distress score for one fiscal year.
type AltmanZ struct {
	Score float64 `json:"score"`
	Zone  string  `json:"zone"`
}

// ComputeAltman scores every year with positive total assets. Missing
// components enter as zero; total assets alone is mandatory because every
// term scales by it.
func ComputeAltman(table *model.ResolutionTable) map[string]AltmanZ {
	out := make(map[string]AltmanZ)
	opt := func(t, y string) float64 { v, _ := table.Value(t, y); return v }

	for _, y := range table.Years {
		ta, ok := table.Value("Total Assets", y)
		if !ok || ta <= 0 {
			continue
		}

		ca := opt("Current Assets", y)
		cl := opt("Current Liabilities", y)
		re := opt("Retained Earnings", y)
		ebit := opt("EBIT", y)
		te := opt("Total Equity", y)
		rev := opt("Revenue", y)
		tl := ta - te
		if tl == 0 {
			tl = 1
		}

		z := 1.2*(ca-cl)/ta + 1.4*re/ta + 3.3*ebit/ta + 0.6*te/tl + 1.0*rev/ta
		z = math.Round(z*100) / 100

		zone := ZoneDistress
		switch {
		case z > 2.99:
			zone = ZoneSafe
		case z > 1.81:
			zone = ZoneGrey
		}
		out[y] = AltmanZ{Score: z, Zone: zone}
	}
	return out
}
