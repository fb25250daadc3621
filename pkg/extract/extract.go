// Package extract recovers structured fields (amount, date, merchant) from
// the noisy plain text produced by OCR or PDF text extraction. Each field is
// found by an ordered list of independent strategies; a strategy that fails to
// match or parse is skipped silently and the next one runs, so a malformed
// document can never abort extraction.
package extract

import "strings"

// SourceKind declares where the input text came from. It does not change the
// strategies that run, only the provenance recorded for diagnostics.
type SourceKind string

const (
	// SourceDocument is text recovered from a text-native document (PDF text layer).
	SourceDocument SourceKind = "document"
	// SourceImage is text recovered by OCR from a rasterized scan or photo.
	SourceImage SourceKind = "image"
)

// Fields holds the extraction result. Every field is optional; the Source
// strings name the strategy that produced each value so a surprising result
// can be traced back to the pattern that matched.
type Fields struct {
	Amount       *float64
	AmountSource string

	Date       *string // zero-padded MM/DD/YYYY
	DateSource string

	Merchant       *string
	MerchantSource string
}

// Extract runs the full pipeline over raw text. Empty or near-empty input
// (a scan with no recoverable text layer) short-circuits to all-nil fields;
// that is a valid result, not an error.
func Extract(text string, kind SourceKind) Fields {
	if len(strings.TrimSpace(text)) < 2 {
		note := "no-text:" + string(kind)
		return Fields{AmountSource: note, DateSource: note, MerchantSource: note}
	}

	var f Fields
	if amt, src, ok := extractAmount(text); ok {
		f.Amount = &amt
		f.AmountSource = src
	}
	if date, src, ok := extractDate(text); ok {
		f.Date = &date
		f.DateSource = src
	}
	if merchant, src, ok := extractMerchant(text); ok {
		f.Merchant = &merchant
		f.MerchantSource = src
	}
	return f
}
