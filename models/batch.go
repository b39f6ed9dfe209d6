package models

import (
	"time"
)

// Batch statuses. A batch moves draft -> open -> closed and never back.
const (
	BatchDraft  = "draft"
	BatchOpen   = "open"
	BatchClosed = "closed"
)

// Batch represents one pre-order run with its own stock pool.
// At most one batch is open at any time.
type Batch struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	DeliveryDate time.Time    `gorm:"not null" json:"delivery_date"`
	Status       string       `gorm:"not null;default:'draft';index" json:"status"` // draft, open, closed
	StockEntries []StockEntry `gorm:"foreignKey:BatchID" json:"stock_entries,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the Batch model
func (Batch) TableName() string {
	return "batches"
}
