package match

import (
	"testing"
	"time"

	"receipt-recon-backend/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testReceipt(amount float64, date, merchant string) models.Receipt {
	r := models.Receipt{ID: 1, UserID: 1, Status: models.ReceiptStatusCompleted}
	r.ExtractedAmount = &amount
	if date != "" {
		r.ExtractedDate = &date
	}
	if merchant != "" {
		r.ExtractedMerchant = &merchant
	}
	return r
}

func testTx(id uint, date time.Time, desc string, amount float64) models.Transaction {
	return models.Transaction{ID: id, UserID: 1, Date: date, Description: desc, Amount: amount}
}

func TestExactAmountScore(t *testing.T) {
	r := testReceipt(202.55, "", "")
	out := ScoreReceipt(r, []models.Transaction{testTx(1, day(2025, 7, 22), "CARD PURCHASE", -202.55)})
	if len(out) != 1 {
		t.Fatalf("expected 1 candidate got %d", len(out))
	}
	if out[0].Confidence != AmountScoreCap {
		t.Fatalf("expected %d got %d", AmountScoreCap, out[0].Confidence)
	}
}

func TestAmountTiers(t *testing.T) {
	r := testReceipt(100.00, "", "")
	txs := []models.Transaction{
		testTx(1, time.Time{}, "a", 100.50), // diff 0.50 -> 40
		testTx(2, time.Time{}, "b", 103.00), // diff 3.00 -> 20
		testTx(3, time.Time{}, "c", 108.00), // diff 8.00 -> 10
		testTx(4, time.Time{}, "d", 110.01), // diff 10.01 -> 0, filtered
	}
	out := ScoreReceipt(r, txs)
	if len(out) != 3 {
		t.Fatalf("expected 3 candidates got %d", len(out))
	}
	if out[0].Confidence != 40 || out[1].Confidence != 20 || out[2].Confidence != 10 {
		t.Fatalf("unexpected tier scores: %d %d %d", out[0].Confidence, out[1].Confidence, out[2].Confidence)
	}
}

func TestNegativeLedgerAmountsCompareByMagnitude(t *testing.T) {
	r := testReceipt(55.25, "", "")
	out := ScoreReceipt(r, []models.Transaction{testTx(1, time.Time{}, "debit", -55.25)})
	if len(out) != 1 || out[0].AmountDiff >= 0.005 {
		t.Fatalf("expected exact magnitude match, got %+v", out)
	}
}

func TestNoExtractedAmountNoCandidates(t *testing.T) {
	r := models.Receipt{ID: 1, UserID: 1}
	if out := ScoreReceipt(r, []models.Transaction{testTx(1, time.Time{}, "x", 10)}); out != nil {
		t.Fatalf("expected nil, got %d candidates", len(out))
	}
	if out := ScoreReceipt(testReceipt(10, "", ""), nil); out != nil {
		t.Fatalf("expected nil for empty pool")
	}
}

func TestDateTiers(t *testing.T) {
	r := testReceipt(100.00, "07/22/2025", "")
	txs := []models.Transaction{
		testTx(1, day(2025, 7, 22), "same", 100),
		testTx(2, day(2025, 7, 23), "next", 100),
		testTx(3, day(2025, 7, 19), "three", 100),
		testTx(4, day(2025, 7, 10), "far", 100),
	}
	out := ScoreReceipt(r, txs)
	if len(out) != 4 {
		t.Fatalf("expected 4 candidates got %d", len(out))
	}
	// sorted descending: 85, 75, 65, 60
	want := []int{85, 75, 65, 60}
	for i, w := range want {
		if out[i].Confidence != w {
			t.Fatalf("candidate %d: expected %d got %d", i, w, out[i].Confidence)
		}
	}
}

func TestMerchantTokenScoreCapped(t *testing.T) {
	// Two significant matched tokens: 15 proportional + 10 bonus, capped at 20.
	r := testReceipt(500.00, "", "Birdseye Surveillance LLC")
	out := ScoreReceipt(r, []models.Transaction{testTx(1, time.Time{}, "BIRDSEYE SURVEILLANCE 555-0100", -500.00)})
	if len(out) != 1 {
		t.Fatalf("expected 1 candidate got %d", len(out))
	}
	if out[0].Confidence != AmountScoreCap+MerchantScoreCap {
		t.Fatalf("expected %d got %d", AmountScoreCap+MerchantScoreCap, out[0].Confidence)
	}
}

func TestMerchantStopwordsExcluded(t *testing.T) {
	// "Co" and "LLC" drop out of both sides of the ratio: 1 of 1 matched,
	// no significant bonus for a 4-letter token.
	pts, matched, eligible := merchantScore("Acme Co. LLC", "ACME HARDWARE")
	if eligible != 1 || matched != 1 {
		t.Fatalf("expected 1/1 tokens got %d/%d", matched, eligible)
	}
	if pts != 15 {
		t.Fatalf("expected 15 points got %v", pts)
	}
}

func TestMerchantNoEligibleTokens(t *testing.T) {
	pts, _, _ := merchantScore("Co. & Co LLC", "anything")
	if pts != 0 {
		t.Fatalf("expected 0 points got %v", pts)
	}
}

func TestRawConfidenceCanExceed100(t *testing.T) {
	r := testReceipt(45.00, "07/22/2025", "Birdseye Surveillance LLC")
	out := ScoreReceipt(r, []models.Transaction{testTx(1, day(2025, 7, 22), "BIRDSEYE SURVEILLANCE PMT", -45.00)})
	if len(out) != 1 {
		t.Fatalf("expected 1 candidate got %d", len(out))
	}
	if out[0].Confidence != 105 {
		t.Fatalf("expected raw 105 got %d", out[0].Confidence)
	}
	if ClampConfidence(out[0].Confidence) != 100 {
		t.Fatalf("expected clamp to 100")
	}
}

func TestClampConfidenceBounds(t *testing.T) {
	if ClampConfidence(-3) != 0 || ClampConfidence(42) != 42 || ClampConfidence(101) != 100 {
		t.Fatalf("clamp misbehaved")
	}
}

func TestStableOrderingAmongTies(t *testing.T) {
	r := testReceipt(100.00, "", "")
	txs := []models.Transaction{
		testTx(7, time.Time{}, "first", 100),
		testTx(3, time.Time{}, "second", 100),
		testTx(9, time.Time{}, "third", 100),
	}
	out := ScoreReceipt(r, txs)
	if len(out) != 3 {
		t.Fatalf("expected 3 candidates got %d", len(out))
	}
	if out[0].Transaction.ID != 7 || out[1].Transaction.ID != 3 || out[2].Transaction.ID != 9 {
		t.Fatalf("tie ordering not stable: %d %d %d", out[0].Transaction.ID, out[1].Transaction.ID, out[2].Transaction.ID)
	}
}

func TestReasonsRecorded(t *testing.T) {
	r := testReceipt(100.00, "07/22/2025", "")
	out := ScoreReceipt(r, []models.Transaction{testTx(1, day(2025, 7, 22), "x", 100)})
	if len(out) != 1 || len(out[0].Reasons) != 2 {
		t.Fatalf("expected 2 reasons got %+v", out)
	}
	if out[0].Reasons[0] != "exact amount match" || out[0].Reasons[1] != "same-day date match" {
		t.Fatalf("unexpected reasons: %v", out[0].Reasons)
	}
}
