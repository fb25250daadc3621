package extract

import (
	"regexp"
	"strings"
)

// merchantHeaderLines bounds the scan: merchant names live at the top of a
// document, and reading further mostly picks up line items.
const merchantHeaderLines = 8

// Lines that can never be a merchant name, however promising they look.
var merchantExclusionREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s+\d+`),
	regexp.MustCompile(`^[\d\s[:punct:]]+$`), // pure numeric/punctuation lines
	regexp.MustCompile(`(?i)\b(?:invoice|bill|receipt|statement)\b`),
	regexp.MustCompile(`(?i)\b(?:total|subtotal|tax|amount|balance)\b`),
	regexp.MustCompile(`(?i)^(?:address|phone|tel|fax|email|e-mail|www\.|https?://)`),
	regexp.MustCompile(`(?i)thank\s+you`),
}

// entityIndicatorRE marks lines carrying a company-entity token; such a line
// is taken immediately over any weaker candidate.
// Bare "co" is deliberately absent: it collides with US state abbreviations
// in address lines, so only the dotted "Co." form counts.
var entityIndicatorRE = regexp.MustCompile(`(?i)\b(?:llc|inc|corp|corporation|ltd|llp|company|construction|services|group|supply|solutions|enterprises|plumbing|electric)\b|\b[Cc]o\.`)

// billToLabelRE anchors the fallback: the vendor name often sits on the line
// after one of these labels when the header itself is unusable.
var billToLabelRE = regexp.MustCompile(`(?i)^\s*(?:bill\s+to|from|vendor)\s*:?\s*$`)

// titleCaseStartRE is the weak-candidate test: an uppercase letter followed
// by a lowercase one, i.e. a line that reads like a name rather than a code.
var titleCaseStartRE = regexp.MustCompile(`^[A-Z][a-z]`)

// extractMerchant scans the document header for a merchant name. Known-vendor
// content signatures override everything; otherwise entity-indicator lines
// beat title-cased ones, and the bill-to fallback runs only when the header
// yields nothing.
func extractMerchant(text string) (string, string, bool) {
	if name, ok := knownVendor(text); ok {
		return name, "known-vendor", true
	}

	var weak string
	seen := 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		seen++
		if seen > merchantHeaderLines {
			break
		}
		if excludedMerchantLine(line) {
			continue
		}
		if entityIndicatorRE.MatchString(line) {
			return line, "header-entity", true
		}
		if weak == "" && titleCaseStartRE.MatchString(line) {
			weak = line // keep scanning: a later entity line still wins
		}
	}
	if weak != "" {
		return weak, "header-title-case", true
	}
	if name, ok := billToFallback(text); ok {
		return name, "bill-to-label", true
	}
	return "", "", false
}

func excludedMerchantLine(line string) bool {
	for _, re := range merchantExclusionREs {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// billToFallback returns the first usable line following a bill-to/from/vendor
// label line.
func billToFallback(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		if !billToLabelRE.MatchString(raw) {
			continue
		}
		for _, next := range lines[i+1:] {
			candidate := strings.TrimSpace(next)
			if candidate == "" {
				continue
			}
			if excludedMerchantLine(candidate) {
				return "", false
			}
			return candidate, true
		}
	}
	return "", false
}
