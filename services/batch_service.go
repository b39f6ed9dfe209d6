package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/models"
)

// InitialStock seeds one product's counters when a batch is created
type InitialStock struct {
	ProductID uint
	Available int
}

// CreateBatch creates a draft batch and one stock entry per product in a
// single transaction. Draft batches are invisible to customers.
func CreateBatch(db *gorm.DB, title string, deliveryDate time.Time, initialStock []InitialStock) (*models.Batch, error) {
	var batch models.Batch
	err := db.Transaction(func(tx *gorm.DB) error {
		batch = models.Batch{
			Title:        title,
			DeliveryDate: deliveryDate,
			Status:       models.BatchDraft,
		}
		if err := tx.Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to create batch: %w", err)
		}

		for _, stock := range initialStock {
			if stock.Available < 0 {
				return fmt.Errorf("initial stock for product %d must not be negative", stock.ProductID)
			}
			entry := models.StockEntry{
				BatchID:   batch.ID,
				ProductID: stock.ProductID,
				Available: stock.Available,
				Reserved:  0,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to create stock entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger().Info("batch created",
		zap.Uint("batch_id", batch.ID), zap.String("title", batch.Title))
	return &batch, nil
}

// PublishBatch opens a draft batch to customers. Any currently open batch is
// closed in the same transaction, so there is never a moment with two open
// batches.
func PublishBatch(db *gorm.DB, batchID uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := lockForUpdate(tx).First(&batch, batchID).Error; err != nil {
			return err
		}
		if batch.Status != models.BatchDraft {
			return &IllegalStatusTransitionError{From: batch.Status, To: models.BatchOpen}
		}

		if err := tx.Model(&models.Batch{}).
			Where("status = ?", models.BatchOpen).
			Update("status", models.BatchClosed).Error; err != nil {
			return fmt.Errorf("failed to close open batches: %w", err)
		}

		return tx.Model(&batch).Update("status", models.BatchOpen).Error
	})
	if err != nil {
		return err
	}

	config.Logger().Info("batch published", zap.Uint("batch_id", batchID))
	return nil
}

// CloseBatch closes an open batch. Closed batches are read-only history.
func CloseBatch(db *gorm.DB, batchID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := lockForUpdate(tx).First(&batch, batchID).Error; err != nil {
			return err
		}
		if batch.Status != models.BatchOpen {
			return &IllegalStatusTransitionError{From: batch.Status, To: models.BatchClosed}
		}
		return tx.Model(&batch).Update("status", models.BatchClosed).Error
	})
}

// DeleteBatch removes a batch and its stock entries. Blocked while any order
// references the batch.
func DeleteBatch(db *gorm.DB, batchID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return err
		}

		var orderCount int64
		if err := tx.Model(&models.Order{}).Where("batch_id = ?", batchID).Count(&orderCount).Error; err != nil {
			return fmt.Errorf("failed to count batch orders: %w", err)
		}
		if orderCount > 0 {
			return &CannotDeleteError{Reason: fmt.Sprintf("batch has %d orders", orderCount)}
		}

		if err := tx.Where("batch_id = ?", batchID).Delete(&models.StockEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete stock entries: %w", err)
		}
		return tx.Delete(&batch).Error
	})
}

// DuplicateBatch creates a new draft batch carrying the source batch's
// product list and nominal stock totals, with nothing reserved. Useful for
// setting up the next week's run from the last one.
func DuplicateBatch(db *gorm.DB, batchID uint) (*models.Batch, error) {
	var copy models.Batch
	err := db.Transaction(func(tx *gorm.DB) error {
		var source models.Batch
		if err := tx.Preload("StockEntries").First(&source, batchID).Error; err != nil {
			return err
		}

		copy = models.Batch{
			Title:        source.Title + " (copy)",
			DeliveryDate: source.DeliveryDate,
			Status:       models.BatchDraft,
		}
		if err := tx.Create(&copy).Error; err != nil {
			return fmt.Errorf("failed to create batch copy: %w", err)
		}

		for _, entry := range source.StockEntries {
			newEntry := models.StockEntry{
				BatchID:   copy.ID,
				ProductID: entry.ProductID,
				Available: entry.TotalStock(),
				Reserved:  0,
			}
			if err := tx.Create(&newEntry).Error; err != nil {
				return fmt.Errorf("failed to copy stock entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

// GetOpenBatchWithStock returns the currently open batch with its stock
// entries and products, or nil when no batch is open
func GetOpenBatchWithStock(db *gorm.DB) (*models.Batch, error) {
	var batch models.Batch
	err := db.Preload("StockEntries.Product").
		Where("status = ?", models.BatchOpen).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// EditStock applies a staff edit of one product's nominal total inside this
// batch. Editing stock of a closed batch is not allowed.
func EditStock(db *gorm.DB, batchID, productID uint, newTotal int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, batchID).Error; err != nil {
			return err
		}
		if batch.Status == models.BatchClosed {
			return ErrActionNotAvailable
		}
		return SetTotalStock(tx, batchID, productID, newTotal)
	})
}

// ListBatches returns all batches newest first, for the admin screen
func ListBatches(db *gorm.DB) ([]models.Batch, error) {
	var batches []models.Batch
	if err := db.Preload("StockEntries.Product").Order("created_at DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}
