package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"receipt-recon-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// Seeds transactions for a user from a CSV export (date,description,amount
// with optional category, reference, tax columns). Duplicate rows are skipped
// via the dedup index so re-running the seed is safe.
func main() {
	file := flag.String("file", "", "CSV ledger export to seed from")
	username := flag.String("username", "admin", "username to assign transactions to")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	flag.Parse()
	if *file == "" {
		log.Fatal("--file is required")
	}

	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	seeded, skipped := 0, 0
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("malformed csv: %v", err)
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}
		tx, ok := parseRow(user.ID, row)
		if !ok {
			skipped++
			continue
		}
		if *dry {
			fmt.Printf("would seed: %s %q %.2f\n", tx.Date.Format("2006-01-02"), tx.Description, tx.Amount)
			seeded++
			continue
		}
		res := gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&tx)
		if res.Error != nil || res.RowsAffected == 0 {
			skipped++
			continue
		}
		seeded++
	}
	fmt.Printf("seeded=%d skipped=%d (dry-run=%v)\n", seeded, skipped, *dry)
}

func parseRow(userID uint, row []string) (models.Transaction, bool) {
	if len(row) < 3 {
		return models.Transaction{}, false
	}
	var date time.Time
	ok := false
	for _, layout := range []string{"2006-01-02", "01/02/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(row[0])); err == nil {
			date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			ok = true
			break
		}
	}
	if !ok {
		return models.Transaction{}, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[2]), ",", ""), 64)
	if err != nil {
		return models.Transaction{}, false
	}
	tx := models.Transaction{UserID: userID, Date: date, Description: strings.TrimSpace(row[1]), Amount: amount}
	if len(row) > 3 {
		tx.Category = strings.TrimSpace(row[3])
	}
	if len(row) > 4 {
		tx.ExternalRef = strings.TrimSpace(row[4])
	}
	return tx, true
}
