package extract

import "testing"

func TestHeaderEntityIndicator(t *testing.T) {
	name, src, ok := extractMerchant("Acme Plumbing LLC\n123 Main St\nSpringfield\n")
	if !ok || name != "Acme Plumbing LLC" {
		t.Fatalf("expected Acme Plumbing LLC got %q ok=%v", name, ok)
	}
	if src != "header-entity" {
		t.Fatalf("expected header-entity source got %s", src)
	}
}

func TestEntityLineBeatsEarlierTitleCase(t *testing.T) {
	// The title-cased first line is only a weak candidate; the entity line
	// further down still wins.
	name, src, ok := extractMerchant("Fresh Market\nWeekly Deals\nGlobex Services Inc\n")
	if !ok || name != "Globex Services Inc" {
		t.Fatalf("expected Globex Services Inc got %q ok=%v src=%s", name, ok, src)
	}
}

func TestTitleCaseWeakCandidate(t *testing.T) {
	name, src, ok := extractMerchant("Fresh Market\n123 Elm St\n")
	if !ok || name != "Fresh Market" {
		t.Fatalf("expected Fresh Market got %q ok=%v", name, ok)
	}
	if src != "header-title-case" {
		t.Fatalf("expected header-title-case source got %s", src)
	}
}

func TestExclusionLinesSkipped(t *testing.T) {
	text := "INVOICE\nPage 1\n555-0100\nPhone: 555-0100\nAcme Electric Co.\n"
	name, _, ok := extractMerchant(text)
	if !ok || name != "Acme Electric Co." {
		t.Fatalf("expected Acme Electric Co. got %q ok=%v", name, ok)
	}
}

func TestStateAbbreviationIsNotEntity(t *testing.T) {
	// "CO" in an address line must not be treated as a company indicator;
	// the weak candidate from the first line should hold.
	name, src, ok := extractMerchant("Fresh Market\n100 Blake St Denver CO 80202\n")
	if !ok || name != "Fresh Market" {
		t.Fatalf("expected Fresh Market got %q ok=%v src=%s", name, ok, src)
	}
}

func TestKnownVendorOverride(t *testing.T) {
	// Logo-only header: the vendor name never appears as a clean line, but
	// the content signature is unambiguous.
	text := "INVOICE\nsecurity cameras installed by birdseye team\nsurveillance package renewal\nTotal: 500.00\n"
	name, src, ok := extractMerchant(text)
	if !ok || name != "Birdseye Surveillance LLC" {
		t.Fatalf("expected Birdseye Surveillance LLC got %q ok=%v", name, ok)
	}
	if src != "known-vendor" {
		t.Fatalf("expected known-vendor source got %s", src)
	}
}

func TestKnownVendorStarlink(t *testing.T) {
	name, _, ok := extractMerchant("Thank you\nyour starlink service payment was received\n")
	if !ok || name != "Starlink" {
		t.Fatalf("expected Starlink got %q ok=%v", name, ok)
	}
}

func TestBillToFallback(t *testing.T) {
	text := "INVOICE\n12345\nTotal: 50.00\nvendor:\nglobex industries\n"
	name, src, ok := extractMerchant(text)
	if !ok || name != "globex industries" {
		t.Fatalf("expected globex industries got %q ok=%v src=%s", name, ok, src)
	}
	if src != "bill-to-label" {
		t.Fatalf("expected bill-to-label source got %s", src)
	}
}

func TestHeaderScanBounded(t *testing.T) {
	// The entity line sits past the header window and must not be found.
	text := "one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nAcme Supply LLC\n"
	if name, _, ok := extractMerchant(text); ok {
		t.Fatalf("expected no merchant, got %q", name)
	}
}
