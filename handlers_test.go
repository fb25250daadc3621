package main

import (
	"testing"
	"time"
)

func TestParseLedgerRowFormats(t *testing.T) {
	tx, ok := parseLedgerRow(1, []string{"2025-07-22", "BIRDSEYE SURVEILLANCE", "-45.00"})
	if !ok {
		t.Fatalf("row rejected")
	}
	if tx.Amount != -45.00 || tx.Description != "BIRDSEYE SURVEILLANCE" {
		t.Fatalf("unexpected tx %+v", tx)
	}
	want := time.Date(2025, 7, 22, 0, 0, 0, 0, time.UTC)
	if !tx.Date.Equal(want) {
		t.Fatalf("expected %v got %v", want, tx.Date)
	}

	tx, ok = parseLedgerRow(1, []string{"7/22/2025", "desc", "1,250.00"})
	if !ok || tx.Amount != 1250.00 {
		t.Fatalf("US format row rejected: %+v ok=%v", tx, ok)
	}
}

func TestParseLedgerRowOptionalColumns(t *testing.T) {
	tx, ok := parseLedgerRow(1, []string{"2025-07-22", "desc", "10.00", "office", "INV-9", "0.83"})
	if !ok {
		t.Fatalf("row rejected")
	}
	if tx.Category != "office" || tx.ExternalRef != "INV-9" {
		t.Fatalf("optional columns lost: %+v", tx)
	}
	if tx.TaxAmount == nil || *tx.TaxAmount != 0.83 {
		t.Fatalf("tax column lost: %+v", tx.TaxAmount)
	}
}

func TestParseLedgerRowRejectsBadInput(t *testing.T) {
	if _, ok := parseLedgerRow(1, []string{"2025-07-22", "desc"}); ok {
		t.Fatalf("short row accepted")
	}
	if _, ok := parseLedgerRow(1, []string{"not-a-date", "desc", "10.00"}); ok {
		t.Fatalf("bad date accepted")
	}
	if _, ok := parseLedgerRow(1, []string{"2025-07-22", "desc", "ten"}); ok {
		t.Fatalf("bad amount accepted")
	}
}

func TestLooksLikeHeader(t *testing.T) {
	if !looksLikeHeader([]string{"Date", "Description", "Amount"}) {
		t.Fatalf("header row not detected")
	}
	if looksLikeHeader([]string{"2025-07-22", "desc", "10.00"}) {
		t.Fatalf("data row mistaken for header")
	}
	if looksLikeHeader(nil) {
		t.Fatalf("empty row mistaken for header")
	}
}
