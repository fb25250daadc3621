package extract

import "strings"

// vendorSignature hard-codes a canonical merchant for documents whose header
// heuristics are known to fail (logo-only headers, statements that bury the
// vendor in boilerplate). Every keyword must appear somewhere in the text.
// This is a deliberate special-case table, not a general mechanism; keep it
// short and add entries only for vendors with a demonstrated failure.
type vendorSignature struct {
	keywords []string
	name     string
}

var vendorSignatures = []vendorSignature{
	{keywords: []string{"birdseye", "surveillance"}, name: "Birdseye Surveillance LLC"},
	{keywords: []string{"starlink"}, name: "Starlink"},
}

// knownVendor checks the override table against the full text, not just the
// header, since these signatures can appear anywhere in the document.
func knownVendor(text string) (string, bool) {
	low := strings.ToLower(text)
	for _, sig := range vendorSignatures {
		all := true
		for _, kw := range sig.keywords {
			if !strings.Contains(low, kw) {
				all = false
				break
			}
		}
		if all {
			return sig.name, true
		}
	}
	return "", false
}
