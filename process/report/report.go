package report

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"receipt-recon-backend/models"

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

// RunReport prints month-bounded reconciliation coverage for username (month
// in YYYY-MM): ledger volume, receipt pipeline outcomes, and how much of the
// ledger is covered by confirmed or auto-matched receipts. With list set it
// also prints the match rows.
func RunReport(username, month string, list bool) {
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var txTotal sql.NullFloat64
	var txCnt int64
	if err := gdb.Raw(`SELECT COALESCE(SUM(amount),0) AS total, COUNT(*) AS cnt FROM transactions WHERE user_id = ? AND date >= ? AND date < ?`, user.ID, start, end).Row().Scan(&txTotal, &txCnt); err != nil {
		log.Fatalf("transaction query failed: %v", err)
	}

	var recCnt, recFailed int64
	gdb.Model(&models.Receipt{}).Where("user_id = ? AND created_at >= ? AND created_at < ?", user.ID, start, end).Count(&recCnt)
	gdb.Model(&models.Receipt{}).Where("user_id = ? AND created_at >= ? AND created_at < ? AND status = ?", user.ID, start, end, models.ReceiptStatusFailed).Count(&recFailed)

	var coveredCnt int64
	var coveredTotal sql.NullFloat64
	if err := gdb.Raw(`SELECT COUNT(DISTINCT t.id), COALESCE(SUM(t.amount),0)
		FROM transactions t
		JOIN matches m ON m.transaction_id = t.id
		WHERE t.user_id = ? AND t.date >= ? AND t.date < ?
		AND m.status IN (?, ?)`,
		user.ID, start, end, models.MatchStatusConfirmed, models.MatchStatusAutoMatched).Row().Scan(&coveredCnt, &coveredTotal); err != nil {
		log.Fatalf("coverage query failed: %v", err)
	}

	fmt.Printf("Reconciliation report for user=%s month=%s (UTC):\n", user.Username, month)
	fmt.Printf("  transactions=%d total_amount=%.2f\n", txCnt, txTotal.Float64)
	fmt.Printf("  receipts=%d failed_extraction=%d\n", recCnt, recFailed)
	fmt.Printf("  covered_transactions=%d covered_amount=%.2f\n", coveredCnt, coveredTotal.Float64)
	if txCnt > 0 {
		fmt.Printf("  coverage=%.1f%%\n", float64(coveredCnt)/float64(txCnt)*100)
	}

	if list {
		var rows []models.Match
		err := gdb.Joins("JOIN transactions ON transactions.id = matches.transaction_id").
			Where("transactions.user_id = ? AND transactions.date >= ? AND transactions.date < ?", user.ID, start, end).
			Order("matches.id").Find(&rows).Error
		if err != nil {
			log.Fatalf("fetch rows failed: %v", err)
		}
		for _, m := range rows {
			fmt.Printf("%d|tx=%d|receipt=%d|conf=%d|%s|confirmed=%v\n", m.ID, m.TransactionID, m.ReceiptID, m.Confidence, m.Status, m.UserConfirmed)
		}
	}
}
