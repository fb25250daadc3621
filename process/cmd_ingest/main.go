package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"receipt-recon-backend/process/ingest"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dir := flag.String("dir", "uploads/receipts", "directory to scan for receipt files")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 2, "number of extraction workers")
	dry := flag.Bool("dry-run", false, "dry-run: extract and print, don't write to DB")
	verbose := flag.Bool("verbose", false, "log per-file extraction detail")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	opts := ingest.Options{
		Dir:     *dir,
		Watch:   *watch,
		Workers: *workers,
		DryRun:  *dry,
		Verbose: *verbose,
	}
	if err := ingest.Run(db, opts); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
}
