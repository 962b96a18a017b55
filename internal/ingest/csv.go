package ingest

import (
	"encoding/csv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/model"
)

// parseCSV reads a whole CSV export into the collector. Vendor CSVs are
// ragged, so field counts are not enforced.
func parseCSV(data []byte, hint model.Statement, out *collector) error {
	reader := csv.NewReader(strings.NewReader(DecodeText(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid, err := reader.ReadAll()
	if err != nil {
		return eris.Wrap(err, "ingest: read csv")
	}
	parseGrid(grid, hint, out)
	return nil
}
