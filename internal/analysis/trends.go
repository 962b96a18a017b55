package analysis

import (
	"math"
	"sort"

	"github.com/crestline-research/finmap/internal/model"
)

// Trend directions. The cutoffs deliberately leave a dead band so noise
// around zero growth reads as stable.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// trendMetrics are the headline series worth a growth summary.
var trendMetrics = []string{
	"Revenue", "Net Income", "Total Assets", "EBIT", "Operating Cash Flow",
}

// Trend summarizes one metric's multi-year path.
type Trend struct {
	Direction  string             `json:"direction"`
	CAGR       float64            `json:"cagr"`
	Volatility float64            `json:"volatility"`
	YoY        map[string]float64 `json:"yoy_growth,omitempty"`
	Latest     float64            `json:"latest"`
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
}

// ComputeTrends builds growth summaries for the headline metrics. Metrics
// resolved in fewer than two years are skipped.
func ComputeTrends(table *model.ResolutionTable) map[string]Trend {
	trends := make(map[string]Trend)

	for _, metric := range trendMetrics {
		series := make(map[string]float64)
		for _, y := range table.Years {
			if v, ok := table.Value(metric, y); ok {
				series[y] = v
			}
		}
		if len(series) < 2 {
			continue
		}

		years := make([]string, 0, len(series))
		for y := range series {
			years = append(years, y)
		}
		sort.Strings(years)

		vals := make([]float64, len(years))
		for i, y := range years {
			vals[i] = series[y]
		}

		growth, _ := cagr(vals[0], vals[len(vals)-1], len(vals)-1)

		yoy := make(map[string]float64)
		for i := 1; i < len(years); i++ {
			prev, curr := series[years[i-1]], series[years[i]]
			if prev != 0 {
				yoy[years[i]] = (curr - prev) / math.Abs(prev) * 100
			}
		}

		direction := TrendStable
		switch {
		case growth > 2:
			direction = TrendUp
		case growth < -2:
			direction = TrendDown
		}

		yoyVals := make([]float64, 0, len(yoy))
		for _, v := range yoy {
			yoyVals = append(yoyVals, v)
		}

		trends[metric] = Trend{
			Direction:  direction,
			CAGR:       growth,
			Volatility: stdDev(yoyVals),
			YoY:        yoy,
			Latest:     vals[len(vals)-1],
			Min:        minOf(vals),
			Max:        maxOf(vals),
		}
	}
	return trends
}

// cagr is the compound annual growth rate in percent. Undefined for
// non-positive starts or negative ends, where the power mean has no meaning.
func cagr(start, end float64, years int) (float64, bool) {
	if years <= 0 || start <= 0 || end < 0 {
		return 0, false
	}
	return (math.Pow(end/start, 1/float64(years)) - 1) * 100, true
}

// stdDev is the sample standard deviation, zero below two samples.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

func minOf(vals []float64) float64 {
	out := vals[0]
	for _, v := range vals[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

func maxOf(vals []float64) float64 {
	out := vals[0]
	for _, v := range vals[1:] {
		if v > out {
			out = v
		}
	}
	return out
}
