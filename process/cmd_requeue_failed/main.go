package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Resets failed receipts back to pending so the ingest worker retries them,
// e.g. after a tesseract or pdftotext fix lands on the host.
func main() {
	username := flag.String("username", "", "limit to one user's receipts (default all)")
	dry := flag.Bool("dry-run", true, "dry-run: count only, don't update")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	where := `status = 'failed'`
	args := []any{}
	if *username != "" {
		where += ` AND user_id = (SELECT id FROM users WHERE username = $1)`
		args = append(args, *username)
	}

	var cnt int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM receipts WHERE `+where, args...).Scan(&cnt); err != nil {
		log.Fatalf("count failed: %v", err)
	}
	if cnt == 0 {
		fmt.Println("no failed receipts; nothing to requeue")
		return
	}
	if *dry {
		fmt.Printf("would requeue %d failed receipts (use --dry-run=false to execute)\n", cnt)
		return
	}

	res, err := db.Exec(`UPDATE receipts SET status = 'pending', failed_reason = '', updated_at = NOW() WHERE `+where, args...)
	if err != nil {
		log.Fatalf("update failed: %v", err)
	}
	n, _ := res.RowsAffected()
	fmt.Printf("requeued %d receipts\n", n)
}
