package match

import (
	"fmt"
	"sync"

	"receipt-recon-backend/models"
)

// singleReceiptPoolLimit bounds the candidate pool when auto-matching one
// receipt interactively. The bulk run scans the whole unmatched pool; the
// asymmetry is intentional per call site.
const singleReceiptPoolLimit = 100

// Store is the persistence surface the policy needs. Implementations must
// return pools already scoped to the owning user and already excluding
// anything linked to a user-confirmed match, in a deterministic order, and
// must make UpsertMatch idempotent on the (transaction, receipt) pair.
type Store interface {
	// UnmatchedTransactions returns up to limit most-recent transactions;
	// limit <= 0 means unbounded.
	UnmatchedTransactions(userID uint, limit int) ([]models.Transaction, error)
	UnmatchedReceipts(userID uint) ([]models.Receipt, error)
	// ReceiptHasConfirmedMatch reports whether a user-confirmed match already
	// references the receipt. The single-receipt path takes a caller-supplied
	// receipt rather than a pool, so it must check eligibility itself.
	ReceiptHasConfirmedMatch(receiptID uint) (bool, error)
	UpsertMatch(transactionID, receiptID uint, confidence int, status string, userConfirmed bool) error
}

// AutoMatcher applies the threshold policy on top of the scoring engine.
type AutoMatcher struct {
	store     Store
	threshold int
}

// NewAutoMatcher builds a policy with the given confidence threshold;
// a non-positive threshold selects the default.
func NewAutoMatcher(store Store, threshold int) *AutoMatcher {
	if threshold <= 0 {
		threshold = DefaultAutoMatchThreshold
	}
	return &AutoMatcher{store: store, threshold: threshold}
}

// MatchReceipt auto-resolves a single receipt against the bounded recent
// pool. A receipt already linked to a user-confirmed match is left alone.
// Returns whether a match was committed; a top candidate below the
// threshold is the expected common case, not an error.
func (a *AutoMatcher) MatchReceipt(receipt models.Receipt) (bool, error) {
	confirmed, err := a.store.ReceiptHasConfirmedMatch(receipt.ID)
	if err != nil {
		return false, fmt.Errorf("check confirmed match: %w", err)
	}
	if confirmed {
		return false, nil
	}
	txs, err := a.store.UnmatchedTransactions(receipt.UserID, singleReceiptPoolLimit)
	if err != nil {
		return false, fmt.Errorf("load transactions: %w", err)
	}
	d, ok := a.decide(receipt, txs)
	if !ok {
		return false, nil
	}
	if err := a.store.UpsertMatch(d.transactionID, d.receiptID, d.confidence, models.MatchStatusAutoMatched, false); err != nil {
		return false, fmt.Errorf("upsert match: %w", err)
	}
	return true, nil
}

// MatchAll auto-resolves every unmatched receipt for a user against the full
// unmatched pool. Decisions are computed sequentially (the engine is pure and
// the pool fixed), then the upserts run concurrently; the matched count is
// tallied only after every upsert has completed, so the summary can never
// undercount in-flight writes.
func (a *AutoMatcher) MatchAll(userID uint) (int, error) {
	receipts, err := a.store.UnmatchedReceipts(userID)
	if err != nil {
		return 0, fmt.Errorf("load receipts: %w", err)
	}
	txs, err := a.store.UnmatchedTransactions(userID, 0)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}

	var decisions []decision
	for _, r := range receipts {
		if d, ok := a.decide(r, txs); ok {
			decisions = append(decisions, d)
		}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		matched  int
		firstErr error
	)
	for _, d := range decisions {
		wg.Add(1)
		go func(d decision) {
			defer wg.Done()
			err := a.store.UpsertMatch(d.transactionID, d.receiptID, d.confidence, models.MatchStatusAutoMatched, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			matched++
		}(d)
	}
	wg.Wait()
	return matched, firstErr
}

type decision struct {
	transactionID uint
	receiptID     uint
	confidence    int
}

// decide scores one receipt and applies the threshold to the top candidate.
// The persisted confidence is clamped: Match rows surface it as a percentage.
func (a *AutoMatcher) decide(receipt models.Receipt, txs []models.Transaction) (decision, bool) {
	candidates := ScoreReceipt(receipt, txs)
	if len(candidates) == 0 || candidates[0].Confidence < a.threshold {
		return decision{}, false
	}
	return decision{
		transactionID: candidates[0].Transaction.ID,
		receiptID:     receipt.ID,
		confidence:    ClampConfidence(candidates[0].Confidence),
	}, true
}
