package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kikiminyes/TutyJuicy/models"
)

// DeleteProduct removes a product. Blocked while the product is referenced
// by a draft or open batch's stock, or by any historical order item.
func DeleteProduct(db *gorm.DB, productID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			return err
		}

		var itemCount int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", productID).Count(&itemCount).Error; err != nil {
			return fmt.Errorf("failed to count order items: %w", err)
		}
		if itemCount > 0 {
			return &CannotDeleteError{Reason: "product appears in existing orders"}
		}

		var activeStock int64
		err := tx.Model(&models.StockEntry{}).
			Joins("JOIN batches ON batches.id = stock_entries.batch_id").
			Where("stock_entries.product_id = ? AND batches.status != ?", productID, models.BatchClosed).
			Count(&activeStock).Error
		if err != nil {
			return fmt.Errorf("failed to count active stock entries: %w", err)
		}
		if activeStock > 0 {
			return &CannotDeleteError{Reason: "product has stock in an active batch"}
		}

		// Stock entries of closed batches are history keyed by product id;
		// they go with the product.
		if err := tx.Where("product_id = ?", productID).Delete(&models.StockEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete stock entries: %w", err)
		}
		return tx.Delete(&product).Error
	})
}
