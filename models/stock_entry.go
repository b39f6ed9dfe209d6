package models

import (
	"time"
)

// StockEntry holds the sellable counters for one product within one batch.
// Available and Reserved never go negative; their sum is the nominal total
// stock, which only changes through explicit staff edits. Order operations
// only move quantity between the two counters or remove it from Reserved.
type StockEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BatchID   uint      `gorm:"not null;uniqueIndex:idx_stock_batch_product" json:"batch_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_stock_batch_product" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Available int       `gorm:"not null;default:0;check:available >= 0" json:"available"`
	Reserved  int       `gorm:"not null;default:0;check:reserved >= 0" json:"reserved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the StockEntry model
func (StockEntry) TableName() string {
	return "stock_entries"
}

// TotalStock returns the nominal total stock for this entry
func (s *StockEntry) TotalStock() int {
	return s.Available + s.Reserved
}
