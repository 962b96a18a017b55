package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// parseXLSX reads every sheet of a workbook, classifying each by sheet name.
// Sheets named ambiguously fall back to per-label classification.
func parseXLSX(data []byte, out *collector) error {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return eris.Wrap(err, "ingest: open workbook")
	}

	for _, sheet := range f.Sheets {
		grid := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = cell.String()
			}
			grid = append(grid, cells)
		}
		parseGrid(grid, ClassifySource(sheet.Name), out)
	}
	return nil
}
