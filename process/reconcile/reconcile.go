package reconcile

import (
	"fmt"
	"log"
	"os"

	"receipt-recon-backend/models"
	"receipt-recon-backend/pkg/match"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// Run executes the auto-match policy for one user from the CLI. With dryRun
// set it only prints the decisions it would persist.
func Run(username string, threshold int, dryRun bool) {
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	store := match.NewGormStore(gdb)
	if dryRun {
		printDecisions(store, user.ID, threshold)
		return
	}

	am := match.NewAutoMatcher(store, threshold)
	matched, err := am.MatchAll(user.ID)
	if err != nil {
		log.Fatalf("auto-match failed: %v", err)
	}
	fmt.Printf("auto-matched %d receipts for user=%s\n", matched, user.Username)
}

// printDecisions re-runs the scoring without touching the matches table.
func printDecisions(store match.Store, userID uint, threshold int) {
	if threshold <= 0 {
		threshold = match.DefaultAutoMatchThreshold
	}
	receipts, err := store.UnmatchedReceipts(userID)
	if err != nil {
		log.Fatalf("load receipts: %v", err)
	}
	txs, err := store.UnmatchedTransactions(userID, 0)
	if err != nil {
		log.Fatalf("load transactions: %v", err)
	}
	fmt.Printf("pool: %d receipts x %d transactions, threshold=%d\n", len(receipts), len(txs), threshold)
	for _, rec := range receipts {
		cands := match.ScoreReceipt(rec, txs)
		if len(cands) == 0 {
			fmt.Printf("receipt %d (%s): no candidates\n", rec.ID, rec.FileName)
			continue
		}
		best := cands[0]
		conf := match.ClampConfidence(best.Confidence)
		verdict := "below threshold"
		if conf >= threshold {
			verdict = "would auto-match"
		}
		fmt.Printf("receipt %d (%s): tx=%d conf=%d %s %v\n",
			rec.ID, rec.FileName, best.Transaction.ID, conf, verdict, best.Reasons)
	}
}
