package models

import (
	"time"
)

// Product represents a sellable juice item
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	Size        string    `json:"size"`                // e.g. "350ml", "1L"
	Description string    `gorm:"type:text" json:"description"`
	ImageS3Key  *string   `json:"image_s3_key"`        // nullable, S3 key for product photo
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
