package main

import (
	"flag"
	"fmt"
	"os"

	"receipt-recon-backend/process/report"
)

func main() {
	username := flag.String("username", "admin", "username to report for")
	month := flag.String("month", "2026-08", "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list match rows")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}

	report.RunReport(*username, *month, *list)
}
