package main

import "receipt-recon-backend/process/sanitize"

func main() {
	sanitize.Run()
}
