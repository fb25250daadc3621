package extract

import "testing"

func TestEmptyTextShortCircuits(t *testing.T) {
	f := Extract("   \n\t\n", SourceImage)
	if f.Amount != nil || f.Date != nil || f.Merchant != nil {
		t.Fatalf("expected all-nil fields, got %+v", f)
	}
	if f.AmountSource != "no-text:image" || f.DateSource != "no-text:image" {
		t.Fatalf("expected no-text provenance, got %q / %q", f.AmountSource, f.DateSource)
	}
}

func TestFullInvoiceDocument(t *testing.T) {
	text := "Globex Services Inc\n42 Industrial Way\n\nInvoice Date: 07/22/2025\n\nSubtotal: 90.00\nTax: 10.00\nGrand Total: 100.00\n"
	f := Extract(text, SourceDocument)
	if f.Amount == nil || *f.Amount != 100.00 {
		t.Fatalf("expected amount 100.00 got %v", f.Amount)
	}
	if f.Date == nil || *f.Date != "07/22/2025" {
		t.Fatalf("expected date 07/22/2025 got %v", f.Date)
	}
	if f.Merchant == nil || *f.Merchant != "Globex Services Inc" {
		t.Fatalf("expected merchant Globex Services Inc got %v", f.Merchant)
	}
}

func TestNoSignalTextIsValid(t *testing.T) {
	// Real text with nothing recoverable is a completed extraction with nil
	// fields, not a failure.
	f := Extract("lorem ipsum dolor sit amet\n", SourceDocument)
	if f.Amount != nil || f.Date != nil || f.Merchant != nil {
		t.Fatalf("expected all-nil fields, got %+v", f)
	}
}
