package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"receipt-recon-backend/pkg/extract"
	"receipt-recon-backend/process/ingest"
)

// Dumps the recovered text layer and extracted fields for one receipt file.
// Handy when extraction returns something surprising and you want to see the
// exact text the strategies ran over.
func main() {
	path := flag.String("path", "", "receipt file path (pdf, txt or image)")
	flag.Parse()
	if *path == "" {
		log.Fatal("--path is required")
	}

	text, kind, err := ingest.ReadText(*path)
	if err != nil {
		log.Fatalf("read text: %v", err)
	}
	fmt.Printf("source=%s chars=%d\n", kind, len(text))
	fmt.Println(strings.Repeat("-", 50))
	fmt.Println(text)
	fmt.Println(strings.Repeat("-", 50))

	fields := extract.Extract(text, kind)
	if fields.Amount != nil {
		fmt.Printf("amount=%.2f (%s)\n", *fields.Amount, fields.AmountSource)
	}
	if fields.Date != nil {
		fmt.Printf("date=%s (%s)\n", *fields.Date, fields.DateSource)
	}
	if fields.Merchant != nil {
		fmt.Printf("merchant=%q (%s)\n", *fields.Merchant, fields.MerchantSource)
	}
}
