// Package ingest parses vendor financial-statement exports (Capitaline,
// Screener, broker research sheets) into raw datasets the mapper can work
// on. It accepts XLSX, CSV, HTML, the HTML-in-.xls hybrid Capitaline emits,
// and ZIP bundles of any of those.
package ingest

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/model"
)

// File is one export payload, named so format detection can use the
// extension.
type File struct {
	Name string
	Data []byte
}

// ParseFile parses a single export into rows. Format is chosen by extension,
// with content sniffing for HTML tables saved under .xls.
func ParseFile(name string, data []byte) ([]model.RawRow, error) {
	out := newCollector()
	if err := parseInto(name, data, out); err != nil {
		return nil, err
	}
	return out.rawRows(), nil
}

func parseInto(name string, data []byte, out *collector) error {
	lower := strings.ToLower(name)
	switch {
	case hasAnySuffix(lower, ".htm", ".html"):
		return parseHTML(data, out)
	case strings.HasSuffix(lower, ".xls") && looksLikeHTML(data):
		return parseHTML(data, out)
	case strings.HasSuffix(lower, ".csv"):
		return parseCSV(data, ClassifySource(name), out)
	case hasAnySuffix(lower, ".xlsx", ".xls"):
		return parseXLSX(data, out)
	default:
		// Unknown extension: the workbook reader gets first refusal.
		return parseXLSX(data, out)
	}
}

// Expand unpacks ZIP bundles into their parseable members; other files pass
// through unchanged. Bundle members that are not statements (readmes,
// folders) are dropped.
func Expand(name string, data []byte) ([]File, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		return []File{{Name: name, Data: data}}, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open zip %s", name)
	}

	var out []File
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if !hasAnySuffix(strings.ToLower(member.Name), ".xlsx", ".xls", ".csv", ".html", ".htm") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: open zip member %s", member.Name)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read zip member %s", member.Name)
		}
		out = append(out, File{Name: member.Name, Data: buf})
	}
	return out, nil
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
