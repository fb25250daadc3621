package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	numericDatePat = `(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})`
	monthNamePat   = `(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)`
	writtenDatePat = monthNamePat + `\.?\s+(\d{1,2}),?\s+(\d{4})`
)

var (
	// Date labels anchored to a numeric token. \s* after the label is
	// deliberate: extraction regularly fuses the label onto the value
	// ("Date paid07/22/2025").
	labeledNumericDateRE = regexp.MustCompile(`(?i)\b(?:invoice\s+date|date\s+paid|date\s+of\s+issue|issue\s+date|billing\s+date|due\s+date|date)\s*:?\s*` + numericDatePat)
	// Same labels anchored to a written date ("Date paidJuly 22, 2025").
	labeledWrittenDateRE = regexp.MustCompile(`(?i)\b(?:invoice\s+date|date\s+paid|date\s+of\s+issue|issue\s+date|billing\s+date|due\s+date|date)\s*:?\s*` + writtenDatePat)
	genericNumericDateRE = regexp.MustCompile(`\b` + numericDatePat + `\b`)
	bareWrittenDateRE    = regexp.MustCompile(`\b` + writtenDatePat)
)

// extractDate tries the date strategies in order and stops at the first one
// that yields any match. Written dates that fail calendar conversion are
// treated as non-matches and the scan moves to the next candidate.
func extractDate(text string) (string, string, bool) {
	// A numeric token is stricter evidence than a written month, so the
	// label-anchored numeric form is tried first within the labeled span.
	if m := labeledNumericDateRE.FindStringSubmatch(text); m != nil {
		if d, ok := normalizeNumericDate(m[1], m[2], m[3]); ok {
			return d, "labeled-numeric-date", true
		}
	}
	for _, m := range labeledWrittenDateRE.FindAllStringSubmatch(text, -1) {
		if d, ok := normalizeWrittenDate(m[1], m[2], m[3]); ok {
			return d, "labeled-written-date", true
		}
	}
	if m := genericNumericDateRE.FindStringSubmatch(text); m != nil {
		if d, ok := normalizeNumericDate(m[1], m[2], m[3]); ok {
			return d, "numeric-date", true
		}
	}
	for _, m := range bareWrittenDateRE.FindAllStringSubmatch(text, -1) {
		if d, ok := normalizeWrittenDate(m[1], m[2], m[3]); ok {
			return d, "written-date", true
		}
	}
	return "", "", false
}

// normalizeNumericDate zero-pads a month/day/year token into MM/DD/YYYY.
// Two-digit years are assumed to be in the 2000s.
func normalizeNumericDate(month, day, year string) (string, bool) {
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	if y < 100 {
		y += 2000
	}
	if y < 1990 || y > 2100 {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", mo, d, y), true
}

// normalizeWrittenDate converts "July 22, 2025" style tokens through a real
// calendar parse so impossible dates fall through to the next strategy.
func normalizeWrittenDate(month, day, year string) (string, bool) {
	name := strings.TrimSuffix(month, ".")
	if len(name) > 3 && name != "Sept" {
		// time.Parse accepts either full month names or the Jan/Feb short forms.
		if t, err := time.Parse("January 2 2006", name+" "+day+" "+year); err == nil {
			return t.Format("01/02/2006"), true
		}
		return "", false
	}
	if name == "Sept" {
		name = "Sep"
	}
	t, err := time.Parse("Jan 2 2006", name+" "+day+" "+year)
	if err != nil {
		return "", false
	}
	return t.Format("01/02/2006"), true
}

// ParseNormalized converts a pipeline-normalized MM/DD/YYYY string back into a
// calendar date. Scoring uses this to compare receipt and transaction days.
func ParseNormalized(s string) (time.Time, bool) {
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
