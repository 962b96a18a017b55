package ingest

import (
	"math"
	"strconv"
	"strings"
)

// currencyNoise lists the decorations vendor exports wrap around figures.
// Order matters: "Rs." before "Rs", "crore" before "Cr".
var currencyNoise = []string{",", "₹", "$", "Rs.", "Rs", "CR", "crore", "Cr"}

// nonValues are the placeholders exports use for missing cells.
var nonValues = map[string]struct{}{
	"":     {},
	"-":    {},
	"--":   {},
	"N/A":  {},
	"NA":   {},
	"n/a":  {},
	"nan":  {},
	"None": {},
}

// ToNumeric coerces a raw cell into a float. It handles accountant negatives
// ("(500)"), Indian digit grouping, and currency markers. The second return
// distinguishes a missing cell from a true zero: "Nil" is zero, "N/A" is not
// a value.
func ToNumeric(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	for _, tok := range currencyNoise {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.TrimSpace(s)

	if _, skip := nonValues[s]; skip {
		return 0, false
	}
	if strings.EqualFold(s, "nil") {
		return 0, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
