package ingest

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/model"
)

const (
	// htmlHeaderScanRows bounds the year-header search inside one table.
	htmlHeaderScanRows = 15
	// captionScanRows is how far above the header the statement caption can sit.
	captionScanRows = 3
)

// parseHTML reads every table of an HTML export. Capitaline names the
// statement in caption rows just above the year header; tables without one
// fall back to per-label classification.
func parseHTML(data []byte, out *collector) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(DecodeText(data)))
	if err != nil {
		return eris.Wrap(err, "ingest: parse html")
	}

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		parseHTMLTable(tableGrid(tbl), out)
	})
	return nil
}

// tableGrid flattens a table into a cell grid, expanding colspans so year
// columns line up under their headers.
func tableGrid(tbl *goquery.Selection) [][]string {
	var grid [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, td *goquery.Selection) {
			span := 1
			if v, err := strconv.Atoi(td.AttrOr("colspan", "1")); err == nil && v > 0 {
				span = v
			}
			text := strings.Join(strings.Fields(td.Text()), " ")
			for k := 0; k < span; k++ {
				cells = append(cells, text)
			}
		})
		grid = append(grid, cells)
	})
	return grid
}

func parseHTMLTable(grid [][]string, out *collector) {
	// Layout tables have fewer than three rows or fewer than two year
	// columns and are discarded.
	if len(grid) < 3 {
		return
	}
	headerIdx, yearCols := findHeader(grid, htmlHeaderScanRows)
	if headerIdx < 0 || len(yearCols) < 2 {
		return
	}

	stmt := captionStatement(grid, headerIdx)
	metricCol := findMetricCol(grid[headerIdx])
	emitRows(grid, headerIdx, yearCols, metricCol, stmt, out)
}

// captionStatement reads the statement name from the rows just above the
// year header.
func captionStatement(grid [][]string, headerIdx int) model.Statement {
	start := headerIdx - captionScanRows
	if start < 0 {
		start = 0
	}
	for i := start; i < headerIdx; i++ {
		line := strings.ToLower(strings.Join(grid[i], " "))
		switch {
		case strings.Contains(line, "balance sheet") || strings.Contains(line, "sources of funds"):
			return model.BalanceSheet
		case strings.Contains(line, "profit") || strings.Contains(line, "loss") || strings.Contains(line, "p&l"):
			return model.ProfitLoss
		case strings.Contains(line, "cash flow"):
			return model.CashFlow
		}
	}
	return model.Financial
}
