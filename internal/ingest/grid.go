package ingest

import (
	"strings"

	"github.com/crestline-research/finmap/internal/model"
)

const (
	// headerScanRows bounds the search for the year header in sheet grids.
	headerScanRows = 20
	// metricColScan bounds the search for the label column in the header row.
	metricColScan = 5
)

// cellRef ties a grid column to the fiscal year its header named.
type cellRef struct {
	col  int
	year string
}

// rowKey identifies a merged row across sources.
type rowKey struct {
	stmt  model.Statement
	label string
}

// collector accumulates parsed rows in first-seen order. The first source to
// supply a (statement, label, year) cell wins; later sources only fill years
// the earlier ones missed.
type collector struct {
	order []rowKey
	rows  map[rowKey]map[string]float64
}

func newCollector() *collector {
	return &collector{rows: make(map[rowKey]map[string]float64)}
}

func (c *collector) add(stmt model.Statement, label string, values map[string]float64) {
	key := rowKey{stmt: stmt, label: label}
	existing, ok := c.rows[key]
	if !ok {
		c.order = append(c.order, key)
		existing = make(map[string]float64, len(values))
		c.rows[key] = existing
	}
	for year, v := range values {
		if _, taken := existing[year]; !taken {
			existing[year] = v
		}
	}
}

func (c *collector) rawRows() []model.RawRow {
	out := make([]model.RawRow, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, model.RawRow{
			Label:     key.label,
			Statement: key.stmt,
			Values:    c.rows[key],
		})
	}
	return out
}

// findHeader locates the row carrying the most year-like cells within the
// first maxRows rows. Earlier rows win ties.
func findHeader(grid [][]string, maxRows int) (int, []cellRef) {
	limit := len(grid)
	if limit > maxRows {
		limit = maxRows
	}

	headerIdx := -1
	var yearCols []cellRef
	for i := 0; i < limit; i++ {
		var cols []cellRef
		for j, cell := range grid[i] {
			if y, ok := ExtractYear(cell); ok {
				cols = append(cols, cellRef{col: j, year: y})
			}
		}
		if len(cols) > len(yearCols) {
			yearCols = cols
			headerIdx = i
		}
	}
	return headerIdx, yearCols
}

// findMetricCol picks the label column: the first non-year column near the
// left edge of the header row.
func findMetricCol(header []string) int {
	limit := len(header)
	if limit > metricColScan {
		limit = metricColScan
	}
	for j := 0; j < limit; j++ {
		if _, ok := ExtractYear(header[j]); !ok {
			return j
		}
	}
	return 0
}

// emitRows walks the data rows below the header and feeds labeled values into
// the collector. Rows classified Financial by the hint are re-classified per
// label.
func emitRows(grid [][]string, headerIdx int, yearCols []cellRef, metricCol int, hint model.Statement, out *collector) {
	for _, row := range grid[headerIdx+1:] {
		if metricCol >= len(row) {
			continue
		}
		label := CleanLabel(row[metricCol])
		if len(label) < 2 || isNullLabel(label) {
			continue
		}

		stmt := hint
		if stmt == model.Financial {
			stmt = ClassifyLabel(label)
		}

		values := make(map[string]float64)
		for _, yc := range yearCols {
			if yc.col >= len(row) {
				continue
			}
			if v, ok := ToNumeric(row[yc.col]); ok {
				values[yc.year] = v
			}
		}
		if len(values) > 0 {
			out.add(stmt, label, values)
		}
	}
}

// parseGrid turns one sheet-shaped cell grid into rows under a statement
// hint. Grids without a recognizable year header contribute nothing.
func parseGrid(grid [][]string, hint model.Statement, out *collector) {
	headerIdx, yearCols := findHeader(grid, headerScanRows)
	if headerIdx < 0 || len(yearCols) == 0 {
		return
	}
	metricCol := findMetricCol(grid[headerIdx])
	emitRows(grid, headerIdx, yearCols, metricCol, hint, out)
}

func isNullLabel(label string) bool {
	switch strings.ToLower(label) {
	case "nan", "none":
		return true
	}
	return false
}
