package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/models"
)

// The stock ledger primitives all run inside the caller's transaction and
// lock the (batch, product) row for the read-validate-write sequence. They
// are the only code allowed to touch the available/reserved counters.

// lockForUpdate adds a row-level lock on PostgreSQL. SQLite has a single
// writer and rejects FOR UPDATE syntax, so the clause is dialect-gated.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// getStockEntryLocked loads the stock entry for (batch, product) under lock
func getStockEntryLocked(tx *gorm.DB, batchID, productID uint) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := lockForUpdate(tx).
		Where("batch_id = ? AND product_id = ?", batchID, productID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ReserveStock moves qty units from available to reserved. It fails with
// InsufficientStockError when fewer than qty units are available; the caller
// must abort its whole transaction on that failure.
func ReserveStock(tx *gorm.DB, batchID, productID uint, qty int) error {
	entry, err := getStockEntryLocked(tx, batchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &InsufficientStockError{Shortfalls: []StockShortfall{
				{ProductID: productID, Requested: qty, Available: 0},
			}}
		}
		return fmt.Errorf("failed to load stock entry: %w", err)
	}

	if entry.Available < qty {
		return &InsufficientStockError{Shortfalls: []StockShortfall{
			{ProductID: productID, Requested: qty, Available: entry.Available},
		}}
	}

	return tx.Model(entry).Updates(map[string]interface{}{
		"available": entry.Available - qty,
		"reserved":  entry.Reserved + qty,
	}).Error
}

// RestoreStock returns qty reserved units to available. Used when a
// reservation is undone without a sale (cancellation). Reserved clamps at
// zero so a duplicate call cannot drive it negative.
func RestoreStock(tx *gorm.DB, batchID, productID uint, qty int) error {
	entry, err := getStockEntryLocked(tx, batchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Stock row gone (batch cascade); nothing to restore into.
			config.Logger().Warn("restore for missing stock entry",
				zap.Uint("batch_id", batchID), zap.Uint("product_id", productID))
			return nil
		}
		return fmt.Errorf("failed to load stock entry: %w", err)
	}

	restored := qty
	if restored > entry.Reserved {
		restored = entry.Reserved
	}

	return tx.Model(entry).Updates(map[string]interface{}{
		"available": entry.Available + qty,
		"reserved":  entry.Reserved - restored,
	}).Error
}

// ReleaseStock removes qty units from reserved without touching available.
// Used when a reservation converts into a completed sale: the units left the
// pool for good. Clamps at zero like RestoreStock.
func ReleaseStock(tx *gorm.DB, batchID, productID uint, qty int) error {
	entry, err := getStockEntryLocked(tx, batchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load stock entry: %w", err)
	}

	released := qty
	if released > entry.Reserved {
		released = entry.Reserved
	}

	return tx.Model(entry).Update("reserved", entry.Reserved-released).Error
}

// SetTotalStock applies a staff edit of the nominal total stock for one
// (batch, product). The new total may not shrink below what is already
// reserved by orders.
func SetTotalStock(tx *gorm.DB, batchID, productID uint, newTotal int) error {
	entry, err := getStockEntryLocked(tx, batchID, productID)
	if err != nil {
		return err
	}

	if newTotal < entry.Reserved {
		return &InvalidStockEditError{
			ProductID:       productID,
			RequestedTotal:  newTotal,
			CurrentReserved: entry.Reserved,
		}
	}

	return tx.Model(entry).Update("available", newTotal-entry.Reserved).Error
}
