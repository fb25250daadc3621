package models

import "time"

// Receipt processing statuses.
const (
	ReceiptStatusPending    = "pending"
	ReceiptStatusProcessing = "processing"
	ReceiptStatusCompleted  = "completed"
	ReceiptStatusFailed     = "failed"
)

// Receipt is one uploaded expense document plus the fields recovered from its
// text layer. Extraction runs exactly once: the row moves from processing to
// completed (fields populated, possibly all nil) or failed. A reviewer may
// overwrite the extracted fields afterwards; that does not change Status.
type Receipt struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	FileName    string `gorm:"size:255;not null"`
	StorePath   string `gorm:"column:store_path;size:512"` // relative path under the upload base dir
	ContentType string `gorm:"size:128"`

	// RawText is the OCR/PDF text layer the pipeline consumed. Kept for
	// re-extraction and debugging; may be empty for image-only scans.
	RawText string `gorm:"type:text"`

	ExtractedAmount   *float64
	ExtractedDate     *string `gorm:"size:10"` // MM/DD/YYYY
	ExtractedMerchant *string `gorm:"size:255"`
	// Provenance notes: which extraction strategy produced each field.
	AmountSource   string `gorm:"size:64"`
	DateSource     string `gorm:"size:64"`
	MerchantSource string `gorm:"size:64"`

	Status       string `gorm:"size:16;default:pending;index"`
	FailedReason string `gorm:"size:255"`
}
