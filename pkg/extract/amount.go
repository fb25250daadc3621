package extract

import (
	"regexp"
	"strings"
)

// amtToken captures a numeric amount substring (digits with optional grouping
// and decimal separators). parseCurrency decides what the separators mean.
const amtToken = `([0-9](?:[0-9.,]*[0-9])?)`

var (
	// Labels seen on card statements and payment confirmations. The \b after
	// the label keeps concatenated forms like "PaymentUSD" out of this one.
	paymentLabelRE = regexp.MustCompile(`(?i)\b(?:payments?|charges?|total\s+charges|amount\s+charged)\b\s*:?\s*(?:[A-Za-z]{3}\s+)?\$?\s*` + amtToken)
	// Same labels fused directly onto a 3-letter currency code ("PaymentUSD 202.55"),
	// a common artifact of PDF text extraction dropping layout whitespace.
	paymentCodeRE = regexp.MustCompile(`(?i)\b(?:payment|charge|total\s*charges)[A-Za-z]{3}\b\s*:?\s*\$?\s*` + amtToken)
	// A line that is only the word "total" with the amount alone on the next line.
	multilineTotalRE = regexp.MustCompile(`(?im)^[ \t]*total[ \t]*\r?\n[ \t]*\$?[ \t]*` + amtToken + `[ \t]*$`)
	grandTotalRE     = regexp.MustCompile(`(?i)\b(?:grand\s+total|final\s+total|amount\s+due)\b\s*:?\s*\$?\s*` + amtToken)
	// The leading class keeps the "total" inside hyphenated "sub-total" from
	// matching here; RE2 has no lookbehind.
	bareTotalRE      = regexp.MustCompile(`(?i)(?:^|[^\w-])total\b\s*:?\s*\$?\s*` + amtToken)
	subtotalRE       = regexp.MustCompile(`(?i)\bsub[\s-]?total\b\s*:?\s*\$?\s*` + amtToken)
	taxRE            = regexp.MustCompile(`(?i)\b(?:sales\s+tax|tax|vat|gst)\b\s*:?\s*\$?\s*` + amtToken)
	currencyTokenRE  = regexp.MustCompile(`\$\s*` + amtToken)
	standaloneLineRE = regexp.MustCompile(`(?m)^[ \t]*\$?[ \t]*` + amtToken + `[ \t]*$`)
	balanceDueRE     = regexp.MustCompile(`(?i)\b(?:balance\s+due|amount\s+owed|amount\s+payable|invoice\s+amount)\b\s*:?\s*\$?\s*` + amtToken)
	billingCtxRE     = regexp.MustCompile(`(?i)\b(?:bill|invoice|charge|amount|payment)`)
	twoDecimalRE     = regexp.MustCompile(`\b([0-9][0-9,]*\.[0-9]{2})\b`)
)

// amountCandidates accumulates the labeled fields the waterfall discovers.
// Total, grand total and subtotal are kept separately because a document can
// carry all three; selection happens at the end, independent of which strategy
// populated each slot.
type amountCandidates struct {
	total      *float64
	totalSrc   string
	grandTotal *float64
	grandSrc   string
	subtotal   *float64
	subSrc     string
	tax        *float64
	taxSrc     string
}

// extractAmount runs the ordered amount waterfall and returns the selected
// value with its provenance note. Selection priority is grand total, then
// total, then subtotal, regardless of discovery order.
func extractAmount(text string) (float64, string, bool) {
	c := runAmountWaterfall(text)
	switch {
	case c.grandTotal != nil:
		return *c.grandTotal, c.grandSrc, true
	case c.total != nil:
		return *c.total, c.totalSrc, true
	case c.subtotal != nil:
		return *c.subtotal, c.subSrc, true
	}
	return 0, "", false
}

// ExtractTax exposes the tax/VAT field separately; it is never promoted to
// the main amount.
func ExtractTax(text string) (float64, bool) {
	c := runAmountWaterfall(text)
	if c.tax != nil {
		return *c.tax, true
	}
	return 0, false
}

func runAmountWaterfall(text string) amountCandidates {
	var c amountCandidates

	// 1/2: payment/charge labels, plain first, then the fused-currency-code form.
	if v, ok := firstPlausible(paymentLabelRE, text); ok {
		c.total, c.totalSrc = &v, "payment-label"
	} else if v, ok := firstPlausible(paymentCodeRE, text); ok {
		c.total, c.totalSrc = &v, "payment-currency-code"
	}

	// 3: the multi-line layout is stronger evidence than label proximity, so
	// it runs unconditionally and overwrites whatever 1/2 found.
	if v, ok := firstPlausible(multilineTotalRE, text); ok {
		c.total, c.totalSrc = &v, "multiline-total"
	}

	if v, ok := firstPlausible(grandTotalRE, text); ok {
		c.grandTotal, c.grandSrc = &v, "grand-total-label"
	}
	if c.grandTotal == nil && c.total == nil {
		if v, ok := firstPlausible(bareTotalRE, text); ok {
			c.total, c.totalSrc = &v, "total-label"
		}
	}
	if v, ok := firstPlausible(subtotalRE, text); ok {
		c.subtotal, c.subSrc = &v, "subtotal-label"
	}
	if m := taxRE.FindStringSubmatch(text); m != nil {
		if v, ok := parseCurrency(m[1]); ok && plausibleTax(v) {
			c.tax, c.taxSrc = &v, "tax-label"
		}
	}

	// Fallbacks only fire when no total-grade value exists yet, and the first
	// one to produce a value ends the waterfall.
	if c.grandTotal == nil && c.total == nil {
		if v, ok := largestCurrencyToken(text); ok {
			c.total, c.totalSrc = &v, "largest-currency-token"
		} else if v, ok := firstPlausible(standaloneLineRE, text); ok {
			c.total, c.totalSrc = &v, "standalone-line"
		} else if v, ok := firstPlausible(balanceDueRE, text); ok {
			c.total, c.totalSrc = &v, "balance-due-label"
		} else if v, ok := billingContextAmount(text); ok {
			c.total, c.totalSrc = &v, "billing-context"
		}
	}
	return c
}

// firstPlausible returns the first regex match that parses to a plausible
// amount. Matches that fail to parse are skipped, not fatal.
func firstPlausible(re *regexp.Regexp, text string) (float64, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, ok := parseCurrency(m[1]); ok && plausibleAmount(v) {
			return v, true
		}
	}
	return 0, false
}

// largestCurrencyToken scans every $-prefixed token and keeps the largest
// plausible value. Receipts usually print the total as the largest figure.
func largestCurrencyToken(text string) (float64, bool) {
	best := 0.0
	found := false
	for _, m := range currencyTokenRE.FindAllStringSubmatch(text, -1) {
		if v, ok := parseCurrency(m[1]); ok && plausibleAmount(v) && v > best {
			best = v
			found = true
		}
	}
	return best, found
}

// billingContextAmount looks for the first two-decimal figure greater than 1
// on or after the first line that mentions billing at all. This is the
// weakest strategy and only runs when everything else came up empty.
func billingContextAmount(text string) (float64, bool) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if billingCtxRE.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	for _, line := range lines[start:] {
		for _, m := range twoDecimalRE.FindAllStringSubmatch(line, -1) {
			if v, ok := parseCurrency(m[1]); ok && v > 1 && plausibleAmount(v) {
				return v, true
			}
		}
	}
	return 0, false
}
