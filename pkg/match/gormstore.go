package match

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"receipt-recon-backend/models"
)

// gormStore adapts a gorm handle to the auto-match policy's Store interface.
// Pools exclude anything already linked to a user-confirmed match and come
// back in a fixed order so repeated policy runs see the same input.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore returns the database-backed Store used by the server and the
// reconcile command.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) UnmatchedTransactions(userID uint, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := s.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Where("id NOT IN (?)", s.db.Model(&models.Match{}).Select("transaction_id").Where("user_confirmed = ?", true)).
		Order("date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *gormStore) UnmatchedReceipts(userID uint) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.Model(&models.Receipt{}).
		Where("user_id = ? AND status = ?", userID, models.ReceiptStatusCompleted).
		Where("extracted_amount IS NOT NULL").
		Where("id NOT IN (?)", s.db.Model(&models.Match{}).Select("receipt_id").Where("user_confirmed = ?", true)).
		Order("id ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func (s *gormStore) ReceiptHasConfirmedMatch(receiptID uint) (bool, error) {
	var n int64
	err := s.db.Model(&models.Match{}).
		Where("receipt_id = ? AND user_confirmed = ?", receiptID, true).
		Count(&n).Error
	return n > 0, err
}

// UpsertMatch replaces any prior row for the same (transaction, receipt) pair
// instead of accumulating history; the unique pair index makes the operation
// idempotent under concurrent runs.
func (s *gormStore) UpsertMatch(transactionID, receiptID uint, confidence int, status string, userConfirmed bool) error {
	m := models.Match{
		TransactionID: transactionID,
		ReceiptID:     receiptID,
		Confidence:    confidence,
		Status:        status,
		UserConfirmed: userConfirmed,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "receipt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"confidence", "status", "user_confirmed", "updated_at"}),
	}).Create(&m).Error
}
