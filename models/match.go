package models

import "time"

// Match statuses.
const (
	MatchStatusPending     = "pending"
	MatchStatusConfirmed   = "confirmed"
	MatchStatusRejected    = "rejected"
	MatchStatusAutoMatched = "auto_matched"
)

// Match links one receipt to one transaction with a confidence score. The
// (transaction, receipt) pair is unique: repeated scoring runs upsert onto the
// same row instead of accumulating duplicates. Confirm/reject flip Status and
// UserConfirmed together, never independently; once a row has
// UserConfirmed=true its transaction and receipt leave future candidate pools.
// Partial unique indexes hold each side to at most one confirmed row.
type Match struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	TransactionID uint        `gorm:"not null;uniqueIndex:idx_match_pair;index:idx_confirmed_tx,unique,where:user_confirmed"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	ReceiptID     uint        `gorm:"not null;uniqueIndex:idx_match_pair;index:idx_confirmed_receipt,unique,where:user_confirmed"`
	Receipt       Receipt     `gorm:"foreignKey:ReceiptID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Confidence    int         `gorm:"not null"`
	Status        string      `gorm:"size:16;not null;index"`
	UserConfirmed bool        `gorm:"default:false;index"`
}
