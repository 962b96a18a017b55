package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausible reporting window for vendor exports. Headers naming years outside
// it are treated as ordinary text, not year columns.
const (
	yearFloor = 1990
	yearCeil  = 2099
)

// fiscalClose suffixes bare years: Indian fiscal years close in March.
const fiscalClose = "03"

var (
	reYearMonth   = regexp.MustCompile(`^(\d{4})(\d{2})$`)
	reFiscalFull  = regexp.MustCompile(`(?i)FY\s*(\d{4})`)
	reFiscalShort = regexp.MustCompile(`(?i)FY\s*(\d{2})(?:\D|$)`)
	reMarchYear   = regexp.MustCompile(`(?i)Mar(?:ch)?['\-\s]?(\d{2,4})`)
	reYearRange   = regexp.MustCompile(`(\d{4})\s*[-/]\s*(\d{2,4})`)
	rePlainYear   = regexp.MustCompile(`(20\d{2}|19\d{2})`)
)

// ExtractYear parses a column header into the internal fiscal-year key
// ("202403"). It accepts the YYYYMM form as-is and the vendor spellings
// FY2024, FY24, Mar 2024, Mar-24, March 2023, 2024-25, 2023/24, or a plain
// year, all anchored to a March close. Headers without a plausible year are
// rejected.
func ExtractYear(header string) (string, bool) {
	s := strings.TrimSpace(header)

	if m := reYearMonth.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		if y >= yearFloor && y <= yearCeil && mo >= 1 && mo <= 12 {
			return s, true
		}
	}

	if m := reFiscalFull.FindStringSubmatch(s); m != nil {
		if y, _ := strconv.Atoi(m[1]); y >= yearFloor && y <= yearCeil {
			return m[1] + fiscalClose, true
		}
	}

	if m := reFiscalShort.FindStringSubmatch(s); m != nil {
		y := 2000 + mustAtoi(m[1])
		if y >= yearFloor && y <= yearCeil {
			return strconv.Itoa(y) + fiscalClose, true
		}
	}

	if m := reMarchYear.FindStringSubmatch(s); m != nil {
		y := mustAtoi(m[1])
		if len(m[1]) != 4 {
			y += 2000
		}
		if y >= yearFloor && y <= yearCeil {
			return strconv.Itoa(y) + fiscalClose, true
		}
	}

	if m := reYearRange.FindStringSubmatch(s); m != nil {
		if y := mustAtoi(m[1]); y >= yearFloor && y <= yearCeil {
			return m[1] + fiscalClose, true
		}
	}

	if m := rePlainYear.FindStringSubmatch(s); m != nil {
		if y := mustAtoi(m[1]); y >= yearFloor && y <= yearCeil {
			return m[1] + fiscalClose, true
		}
	}

	return "", false
}

// mustAtoi converts digit runs already validated by a regexp group.
func mustAtoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
