package models

import (
	"time"
)

// Payment proof types
const (
	ProofTypeImage            = "image"             // uploaded screenshot/photo, FileRef is an S3 key or local filename
	ProofTypeCashConfirmation = "cash_confirmation" // sentinel: customer confirmed cash on pickup, no file
)

// PaymentProof records the customer's proof of payment for an order.
// At most one exists per order in the normal flow.
type PaymentProof struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	FileRef   string    `json:"file_ref"` // empty for cash confirmations
	FileType  string    `gorm:"not null" json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the PaymentProof model
func (PaymentProof) TableName() string {
	return "payment_proofs"
}
