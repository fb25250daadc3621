package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sanity bounds for extracted values, in whole currency units. Anything at or
// above the bound is assumed to be an id, phone number, or OCR artifact.
const (
	maxPlausibleAmount = 50000
	maxPlausibleTax    = 10000
)

// euDecimalRE matches a comma followed by exactly two digits at the end of the
// token, i.e. a European-style decimal separator ("4.763,00").
var euDecimalRE = regexp.MustCompile(`,\d{2}$`)

// parseCurrency normalizes a matched amount substring into a float value.
// A trailing ",NN" is treated as a decimal separator; every other comma is a
// thousands separator and is dropped.
func parseCurrency(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if euDecimalRE.MatchString(s) {
		i := strings.LastIndex(s, ",")
		intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:i])
		s = intPart + "." + s[i+1:]
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// plausibleAmount accepts finite values strictly between zero and the sanity bound.
func plausibleAmount(v float64) bool {
	return v > 0 && v < maxPlausibleAmount
}

// plausibleTax is looser at the bottom: a zero tax line is legitimate.
func plausibleTax(v float64) bool {
	return v >= 0 && v < maxPlausibleTax
}
