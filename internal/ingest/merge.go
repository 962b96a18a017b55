package ingest

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/normalize"
)

// reconcileYears bounds the integrity check to the most recent fiscal years.
const reconcileYears = 5

// BSCheck is one fiscal year's balance-sheet reconciliation snapshot. Nil
// fields mean the dataset never reported that aggregate.
type BSCheck struct {
	Year                  string   `json:"year"`
	TotalAssets           *float64 `json:"total_assets,omitempty"`
	CurrentAssets         *float64 `json:"current_assets,omitempty"`
	NonCurrentAssets      *float64 `json:"non_current_assets,omitempty"`
	TotalEquity           *float64 `json:"total_equity,omitempty"`
	TotalLiabilities      *float64 `json:"total_liabilities,omitempty"`
	CurrentLiabilities    *float64 `json:"current_liabilities,omitempty"`
	NonCurrentLiabilities *float64 `json:"non_current_liabilities,omitempty"`
	AssetsGap             *float64 `json:"assets_gap,omitempty"`
	LiabEquityGap         *float64 `json:"liab_equity_gap,omitempty"`
}

// Report describes one dataset build: which files contributed, which failed,
// and how well the merged balance sheet reconciles.
type Report struct {
	Files    []string  `json:"files"`
	Failures []string  `json:"failures,omitempty"`
	Checks   []BSCheck `json:"checks,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Load expands, parses, and merges export files into one dataset. Files merge
// first-wins per (statement, label, year), so upload order is priority order.
// Per-file parse failures land in the report and do not abort the load; only
// a dataset with no rows at all is an error.
func Load(company string, files []File) (*model.Dataset, *Report, error) {
	report := &Report{}
	merged := newCollector()

	for _, f := range files {
		members, err := Expand(f.Name, f.Data)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		for _, m := range members {
			report.Files = append(report.Files, m.Name)
			if err := parseInto(m.Name, m.Data, merged); err != nil {
				report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", m.Name, err))
			}
		}
	}

	ds := &model.Dataset{Company: company, Rows: merged.rawRows(), Sources: report.Files}
	ds.RecomputeYears()
	if len(ds.Rows) == 0 {
		return nil, report, eris.New("ingest: no parseable rows in any input")
	}

	reconcile(ds, report)
	zap.L().Info("ingest: dataset loaded",
		zap.String("company", company),
		zap.Int("files", len(report.Files)),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("years", len(ds.Years)),
		zap.Int("failures", len(report.Failures)),
		zap.Int("warnings", len(report.Warnings)),
	)
	return ds, report, nil
}

// reconcile cross-checks the merged balance sheet for the most recent years:
// current plus non-current assets against total assets, and liabilities plus
// equity against total assets. Gaps beyond 1% of total assets become
// warnings, never errors; vendor exports round aggregates independently.
func reconcile(ds *model.Dataset, report *Report) {
	years := ds.Years
	if len(years) > reconcileYears {
		years = years[len(years)-reconcileYears:]
	}

	for _, year := range years {
		ta := pickBS(ds, year, "total assets")
		ca := pickBS(ds, year, "current assets", "total current assets")
		nca := pickBS(ds, year, "non current assets", "total reported non current assets")
		eq := pickBS(ds, year, "total equity", "total stockholders equity", "shareholders funds")
		cl := pickBS(ds, year, "current liabilities", "total current liabilities")
		ncl := pickBS(ds, year, "non current liabilities")
		tl := pickBS(ds, year, "total liabilities")
		if tl == nil && ta != nil && eq != nil {
			d := *ta - *eq
			tl = &d
		}

		check := BSCheck{
			Year:                  year,
			TotalAssets:           ta,
			CurrentAssets:         ca,
			NonCurrentAssets:      nca,
			TotalEquity:           eq,
			TotalLiabilities:      tl,
			CurrentLiabilities:    cl,
			NonCurrentLiabilities: ncl,
		}
		if ta != nil && ca != nil && nca != nil {
			g := *ca + *nca - *ta
			check.AssetsGap = &g
		}
		if ta != nil && tl != nil && eq != nil {
			g := *tl + *eq - *ta
			check.LiabEquityGap = &g
		}
		report.Checks = append(report.Checks, check)

		tol := 1.0
		if ta != nil {
			if t := math.Abs(*ta) * 0.01; t > tol {
				tol = t
			}
		}
		if check.AssetsGap != nil && math.Abs(*check.AssetsGap) > tol {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("balance sheet %s: current + non-current assets miss total assets by %.2f", year, *check.AssetsGap))
		}
		if check.LiabEquityGap != nil && math.Abs(*check.LiabEquityGap) > tol {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("balance sheet %s: liabilities + equity miss total assets by %.2f", year, *check.LiabEquityGap))
		}
	}
}

// pickBS finds the first balance-sheet row whose normalized label matches one
// of the alternates and has a value for the year. Alternates are tried in
// order, so canonical names win over vendor variants.
func pickBS(ds *model.Dataset, year string, alternates ...string) *float64 {
	for _, want := range alternates {
		for i := range ds.Rows {
			if ds.Rows[i].Statement != model.BalanceSheet {
				continue
			}
			if normalize.Label(ds.Rows[i].Label) != want {
				continue
			}
			if v, ok := ds.Rows[i].Value(year); ok {
				return &v
			}
		}
	}
	return nil
}
