package models

import (
	"time"
)

// OrderItem is one line of an order. PricePerItem is captured at order time
// and is immutable afterwards: later product price edits must not reprice
// historical orders.
type OrderItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	ProductID    uint      `gorm:"not null;index" json:"product_id"`
	Product      Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity     int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	PricePerItem float64   `gorm:"not null" json:"price_per_item"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
