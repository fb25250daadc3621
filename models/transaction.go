package models

import "time"

// Transaction is one imported ledger line (bank or credit-card). Rows are
// created by the CSV import and are immutable except for description, amount
// and category corrections. A row referenced by a confirmed Match must not be
// deleted; the FK restraint on Match enforces that at the DB level.
type Transaction struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_tx_dedup"`
	// Date carries no time component; imports truncate to midnight UTC.
	Date        time.Time `gorm:"not null;uniqueIndex:idx_tx_dedup"`
	Description string    `gorm:"size:512;not null;uniqueIndex:idx_tx_dedup"`
	// Amount is signed: charges are negative on card ledgers, positive on
	// bank statements. Matching compares against the absolute value.
	Amount      float64  `gorm:"not null;uniqueIndex:idx_tx_dedup"`
	Category    string   `gorm:"size:128"`
	ExternalRef string   `gorm:"size:128"`
	TaxAmount   *float64 // optional sales-tax portion if the ledger reports it
}
