// Package match scores receipt/transaction pairings and drives the
// auto-match policy. Scoring is a pure function over in-memory records; the
// policy layers persistence on top through a small store interface.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"receipt-recon-backend/models"
	"receipt-recon-backend/pkg/extract"
)

// Score caps per factor and the decision thresholds. The caps sum to 105, so
// a raw confidence can exceed 100; ClampConfidence bounds it where a caller
// needs a true percentage.
const (
	AmountScoreCap   = 60
	DateScoreCap     = 25
	MerchantScoreCap = 20

	// MinCandidateConfidence filters noise pairings out of the result list.
	MinCandidateConfidence = 10
	// DefaultAutoMatchThreshold is the confidence at which the policy commits
	// a match without human review. Callers may override per run.
	DefaultAutoMatchThreshold = 70
)

// merchantStopwords never count toward merchant token matching, in either the
// numerator or the denominator.
var merchantStopwords = map[string]bool{
	"llc": true, "inc": true, "corp": true, "ltd": true, "company": true, "co": true,
}

// Candidate is an ephemeral scored pairing of the receipt under consideration
// with one transaction. Candidates are rebuilt on every scoring call and are
// never persisted.
type Candidate struct {
	Transaction models.Transaction
	// Confidence is the raw rounded score. It is not clamped here; the caps
	// sum to 105 and callers that present it as a percentage clamp at the
	// point of use.
	Confidence int
	Reasons    []string
	AmountDiff float64
}

// ScoreReceipt ranks the given transactions against one receipt's extracted
// fields. A receipt with no extracted amount, or an empty pool, yields an
// empty list; neither is an error. Ordering is confidence-descending with the
// input order preserved among ties.
func ScoreReceipt(receipt models.Receipt, txs []models.Transaction) []Candidate {
	if receipt.ExtractedAmount == nil || len(txs) == 0 {
		return nil
	}

	var out []Candidate
	for _, tx := range txs {
		c := scoreOne(receipt, tx)
		if c.Confidence >= MinCandidateConfidence {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func scoreOne(receipt models.Receipt, tx models.Transaction) Candidate {
	var (
		score   float64
		reasons []string
	)

	// Amount is the dominant factor. The transaction side is compared by
	// absolute value: card ledgers store charges as negatives.
	diff := math.Abs(*receipt.ExtractedAmount - math.Abs(tx.Amount))
	switch {
	case diff < 0.005:
		score += AmountScoreCap
		reasons = append(reasons, "exact amount match")
	case diff <= 1:
		score += 40
		reasons = append(reasons, fmt.Sprintf("amount within $1.00 (diff $%.2f)", diff))
	case diff <= 5:
		score += 20
		reasons = append(reasons, fmt.Sprintf("amount within $5.00 (diff $%.2f)", diff))
	case diff <= 10:
		score += 10
		reasons = append(reasons, fmt.Sprintf("amount within $10.00 (diff $%.2f)", diff))
	}

	// Date only contributes when both sides have a parseable date.
	if receipt.ExtractedDate != nil {
		if rd, ok := extract.ParseNormalized(*receipt.ExtractedDate); ok && !tx.Date.IsZero() {
			days := math.Abs(dateOnly(rd).Sub(dateOnly(tx.Date)).Hours() / 24)
			switch {
			case days == 0:
				score += DateScoreCap
				reasons = append(reasons, "same-day date match")
			case days <= 1:
				score += 15
				reasons = append(reasons, "date within 1 day")
			case days <= 3:
				score += 5
				reasons = append(reasons, "date within 3 days")
			}
		}
	}

	if receipt.ExtractedMerchant != nil {
		if pts, matched, eligible := merchantScore(*receipt.ExtractedMerchant, tx.Description); pts > 0 {
			score += pts
			reasons = append(reasons, fmt.Sprintf("merchant tokens matched (%d of %d)", matched, eligible))
		}
	}

	return Candidate{
		Transaction: tx,
		Confidence:  int(math.Round(score)),
		Reasons:     reasons,
		AmountDiff:  diff,
	}
}

// merchantScore compares merchant-name tokens against the transaction
// description. Tokens of length <= 2 and entity stopwords are excluded from
// both the match count and the token total. Tokens of length >= 5 that match
// earn a flat bonus on top of the proportional base.
func merchantScore(merchant, description string) (float64, int, int) {
	desc := strings.ToLower(description)
	var eligible, matched, significant int
	for _, tok := range strings.Fields(strings.ToLower(merchant)) {
		tok = strings.Trim(tok, ".,&()")
		if len(tok) <= 2 || merchantStopwords[tok] {
			continue
		}
		eligible++
		if strings.Contains(desc, tok) {
			matched++
			if len(tok) >= 5 {
				significant++
			}
		}
	}
	if eligible == 0 || matched == 0 {
		return 0, 0, eligible
	}
	pts := float64(matched)/float64(eligible)*15 + float64(significant)*5
	return math.Min(pts, MerchantScoreCap), matched, eligible
}

// ClampConfidence bounds a raw engine score to [0,100] for presentation as a
// percentage.
func ClampConfidence(c int) int {
	if c > 100 {
		return 100
	}
	if c < 0 {
		return 0
	}
	return c
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
