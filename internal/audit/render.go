package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/model"
)

// WriteTable renders the report as an aligned text table for terminal review.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "TARGET\tSTMT\tPROVENANCE\tCONF\tSOURCE\t%s\n", strings.Join(r.Years, "\t"))
	for _, line := range r.Lines {
		cells := make([]string, len(line.Cells))
		for i, c := range line.Cells {
			cells[i] = formatCell(c)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			line.Target,
			shortStatement(line.Statement),
			line.Provenance,
			formatConfidence(line.Confidence),
			line.SourceLabel,
			strings.Join(cells, "\t"),
		)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "audit: flush table")
	}

	if len(r.Unmapped) > 0 {
		fmt.Fprintf(w, "\nUnmapped targets (%d):\n", len(r.Unmapped))
		utw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, u := range r.Unmapped {
			near := ""
			if u.BestLabel != "" {
				near = fmt.Sprintf("%q at %.3f", u.BestLabel, u.BestScore)
			}
			fmt.Fprintf(utw, "  %s\t%s\t%s\t%s\n", u.Target, shortStatement(u.Statement), u.Reason, near)
		}
		if err := utw.Flush(); err != nil {
			return eris.Wrap(err, "audit: flush unmapped")
		}
	}

	if len(r.Unused) > 0 {
		fmt.Fprintf(w, "\nUnused rows (%d):\n", len(r.Unused))
		utw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, u := range r.Unused {
			near := ""
			if u.BestTarget != "" {
				near = fmt.Sprintf("best %s at %.3f", u.BestTarget, u.BestScore)
			}
			fmt.Fprintf(utw, "  %d\t%s\t%s\t%s\n", u.RowIndex, u.Label, shortStatement(u.Statement), near)
		}
		if err := utw.Flush(); err != nil {
			return eris.Wrap(err, "audit: flush unused")
		}
	}

	fmt.Fprintf(w, "\nCoverage: %d/%d targets mapped, %d with candidates, %d resolved; %d/%d rows used\n",
		r.Coverage.Mapped, r.Coverage.Targets,
		r.Coverage.WithCandidates, r.Coverage.Resolved,
		r.Coverage.RowsUsed, r.Coverage.Rows,
	)
	fmt.Fprintf(w, "Provenance: %d mapped, %d derived, %d fallback, %d unresolved\n",
		r.ByProv[model.ProvMapped], r.ByProv[model.ProvDerived],
		r.ByProv[model.ProvFallback], r.ByProv[model.ProvUnresolved],
	)
	if len(r.Coverage.MissingCritical) > 0 {
		fmt.Fprintf(w, "Missing critical: %s\n", strings.Join(r.Coverage.MissingCritical, ", "))
	}
	return nil
}

// WriteCSV renders one row per target with year columns. Unresolved cells are
// left empty rather than written as zero.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"target", "statement", "provenance", "confidence", "source_label", "explanation"}, r.Years...)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "audit: write csv header")
	}

	for _, line := range r.Lines {
		rec := []string{
			line.Target,
			string(line.Statement),
			string(line.Provenance),
			formatConfidence(line.Confidence),
			line.SourceLabel,
			line.Explanation,
		}
		for _, c := range line.Cells {
			if c.Value == nil {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(*c.Value, 'f', -1, 64))
			}
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "audit: write csv row %s", line.Target)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "audit: flush csv")
}

// WriteJSON renders the full report, including the unmapped and unused
// sections, as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(r), "audit: encode json")
}

func formatCell(c YearCell) string {
	if c.Value == nil {
		return "-"
	}
	return strconv.FormatFloat(*c.Value, 'f', 2, 64)
}

func formatConfidence(conf float64) string {
	if conf == 0 {
		return ""
	}
	return strconv.FormatFloat(conf, 'f', 3, 64)
}

func shortStatement(s model.Statement) string {
	switch s {
	case model.BalanceSheet:
		return "BS"
	case model.ProfitLoss:
		return "PL"
	case model.CashFlow:
		return "CF"
	case model.Financial:
		return "FIN"
	}
	return string(s)
}
