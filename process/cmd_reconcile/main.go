package main

import (
	"flag"
	"fmt"
	"os"

	"receipt-recon-backend/process/reconcile"
)

func main() {
	username := flag.String("username", "admin", "username to reconcile for")
	threshold := flag.Int("threshold", 0, "auto-match confidence threshold (0 = engine default)")
	dry := flag.Bool("dry-run", true, "dry-run: print decisions, don't write matches")
	flag.Parse()

	if os.Getenv("DB_DSN") == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}

	reconcile.Run(*username, *threshold, *dry)
}
