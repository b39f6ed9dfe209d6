package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/models"
)

// ErrActionNotAvailable is returned for operations that are legal in general
// but not for the order's current status (e.g. changing the payment method
// after payment was received). Surfaced to customers as a generic message.
var ErrActionNotAvailable = errors.New("action not available for the order's current status")

// PlaceOrderItem is one requested line of a checkout. UnitPrice is the price
// the customer saw; it is captured as-is, not re-read from the product table.
type PlaceOrderItem struct {
	ProductID uint
	Quantity  int
	UnitPrice float64
}

// PlaceOrderRequest carries everything the reservation transaction needs
type PlaceOrderRequest struct {
	BatchID         uint
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	PaymentMethod   string // may be empty, meaning not chosen yet
	Items           []PlaceOrderItem
	RequestToken    string // optional client token for idempotent retries
}

// PlaceOrder is the reservation transaction: it validates the batch is still
// open, checks every requested line against available stock under row locks,
// and creates the order, its items, and the stock reservations as one atomic
// unit. Concurrent checkouts for the same product serialize on the stock row
// lock; whichever transaction commits first wins the stock.
func PlaceOrder(db *gorm.DB, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item quantity must be positive")
		}
	}

	// Idempotent retry: a request token we have seen before maps to the
	// order it already created. The reservation must not run twice.
	if req.RequestToken != "" && idempotencyStore != nil {
		if code, ok := idempotencyStore.Lookup(context.TODO(), req.RequestToken); ok {
			existing, err := GetOrderByCode(db, code)
			if err == nil {
				config.Logger().Info("checkout request token replayed",
					zap.String("token", req.RequestToken), zap.String("order_code", code))
				return existing, nil
			}
		}
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentPending
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		// The batch may have closed between page load and submit.
		var batch models.Batch
		if err := tx.First(&batch, req.BatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotOpen
			}
			return fmt.Errorf("failed to load batch: %w", err)
		}
		if batch.Status != models.BatchOpen {
			return ErrBatchNotOpen
		}

		// Validate every line under row locks before writing anything, so
		// the rejection can name all offending products at once.
		var shortfalls []StockShortfall
		for _, item := range req.Items {
			var entry models.StockEntry
			err := lockForUpdate(tx).Preload("Product").
				Where("batch_id = ? AND product_id = ?", req.BatchID, item.ProductID).
				First(&entry).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					shortfalls = append(shortfalls, StockShortfall{
						ProductID: item.ProductID, Requested: item.Quantity, Available: 0,
					})
					continue
				}
				return fmt.Errorf("failed to load stock entry: %w", err)
			}
			if entry.Available < item.Quantity {
				shortfalls = append(shortfalls, StockShortfall{
					ProductID:   item.ProductID,
					ProductName: entry.Product.Name,
					Requested:   item.Quantity,
					Available:   entry.Available,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Shortfalls: shortfalls}
		}

		var total float64
		for _, item := range req.Items {
			total += float64(item.Quantity) * item.UnitPrice
		}

		order = models.Order{
			Code:            uuid.NewString(),
			BatchID:         req.BatchID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			Status:          models.OrderPendingPayment,
			PaymentMethod:   method,
			TotalAmount:     total,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range req.Items {
			orderItem := models.OrderItem{
				OrderID:      order.ID,
				ProductID:    item.ProductID,
				Quantity:     item.Quantity,
				PricePerItem: item.UnitPrice,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			if err := ReserveStock(tx, req.BatchID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.RequestToken != "" && idempotencyStore != nil {
		idempotencyStore.Remember(context.TODO(), req.RequestToken, order.Code)
	}

	config.Logger().Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("order_code", order.Code),
		zap.Uint("batch_id", order.BatchID),
		zap.Float64("total", order.TotalAmount))

	if err := db.Preload("Items.Product").First(&order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}
	return &order, nil
}

// GetOrderByCode loads an order by its public tracking code
func GetOrderByCode(db *gorm.DB, code string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items.Product").Preload("PaymentProof").
		Where("code = ?", code).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetPaymentMethod records the customer's chosen payment method and stamps
// PaymentStartedAt, which starts the payment timeout clock. Only allowed
// while the order is still awaiting payment.
func SetPaymentMethod(db *gorm.DB, code, method string) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("code = ?", code).First(&order).Error; err != nil {
			return err
		}
		if order.Status != models.OrderPendingPayment {
			return ErrActionNotAvailable
		}
		now := time.Now()
		return tx.Model(&order).Updates(map[string]interface{}{
			"payment_method":     method,
			"payment_started_at": &now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return GetOrderByCode(db, code)
}

// ResetPaymentMethod puts the order back to no chosen payment method and
// clears the timeout clock
func ResetPaymentMethod(db *gorm.DB, code string) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("code = ?", code).First(&order).Error; err != nil {
			return err
		}
		if order.Status != models.OrderPendingPayment {
			return ErrActionNotAvailable
		}
		return tx.Model(&order).Updates(map[string]interface{}{
			"payment_method":     models.PaymentPending,
			"payment_started_at": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return GetOrderByCode(db, code)
}

// AdvanceOrderStatus drives the order status state machine. A transition
// into cancelled goes through the shared compensation path; the transition
// into picked_up releases the reserved stock for good; everything else is a
// pure status write. Advancing out of pending_payment for a non-cash method
// requires a payment proof.
func AdvanceOrderStatus(db *gorm.DB, orderID uint, newStatus string) error {
	if newStatus == models.OrderCancelled {
		return CancelOrder(db, orderID)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).Preload("Items").First(&order, orderID).Error; err != nil {
			return err
		}
		if !CanTransition(order.Status, newStatus) {
			return &IllegalStatusTransitionError{From: order.Status, To: newStatus}
		}

		if newStatus == models.OrderPaymentReceived && !models.IsCashMethod(order.PaymentMethod) {
			var proofCount int64
			if err := tx.Model(&models.PaymentProof{}).Where("order_id = ?", order.ID).Count(&proofCount).Error; err != nil {
				return fmt.Errorf("failed to check payment proof: %w", err)
			}
			if proofCount == 0 {
				return &PaymentProofRequiredError{OrderID: order.ID}
			}
		}

		// The sale locks in at pickup: the units leave reserved without
		// ever returning to available.
		if newStatus == models.OrderPickedUp {
			for _, item := range order.Items {
				if err := ReleaseStock(tx, order.BatchID, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		return tx.Model(&order).Update("status", newStatus).Error
	})
	if err != nil {
		return err
	}

	config.Logger().Info("order status advanced",
		zap.Uint("order_id", orderID), zap.String("status", newStatus))
	return nil
}

// CancelOrder cancels an order and compensates its reservation: every item's
// quantity is restored to available, the payment proof (if any) is deleted,
// and the status is set to cancelled, all in one transaction. Manual cancel,
// bulk cancel, and the timeout sweep all go through here so the compensation
// runs exactly once per order. Cancelling an already-cancelled order is a
// no-op.
func CancelOrder(db *gorm.DB, orderID uint) error {
	var proofRef string
	cancelled := false

	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockForUpdate(tx).Preload("Items").Preload("PaymentProof").First(&order, orderID).Error; err != nil {
			return err
		}
		if order.Status == models.OrderCancelled {
			return nil
		}
		if !CanTransition(order.Status, models.OrderCancelled) {
			return &IllegalStatusTransitionError{From: order.Status, To: models.OrderCancelled}
		}

		for _, item := range order.Items {
			if err := RestoreStock(tx, order.BatchID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if order.PaymentProof != nil {
			proofRef = order.PaymentProof.FileRef
			if err := tx.Delete(order.PaymentProof).Error; err != nil {
				return fmt.Errorf("failed to delete payment proof: %w", err)
			}
		}

		cancelled = true
		return tx.Model(&order).Update("status", models.OrderCancelled).Error
	})
	if err != nil {
		return err
	}

	if cancelled {
		// Remove the proof file outside the transaction; failure here only
		// leaves an orphaned object behind.
		deleteProofFile(proofRef)
		config.Logger().Info("order cancelled", zap.Uint("order_id", orderID))
	}
	return nil
}

// BulkFailure reports one order a bulk operation could not update
type BulkFailure struct {
	OrderID uint   `json:"order_id"`
	Error   string `json:"error"`
}

// BulkAdvanceStatus applies AdvanceOrderStatus to each order independently.
// One order failing its transition does not roll back or block the others.
func BulkAdvanceStatus(db *gorm.DB, orderIDs []uint, newStatus string) (updated []uint, failures []BulkFailure) {
	for _, id := range orderIDs {
		if err := AdvanceOrderStatus(db, id, newStatus); err != nil {
			failures = append(failures, BulkFailure{OrderID: id, Error: err.Error()})
			continue
		}
		updated = append(updated, id)
	}
	return updated, failures
}

// SweepExpiredPendingOrders cancels every order that entered the payment step
// longer than timeout ago without submitting a proof. Each order is cancelled
// in its own transaction through CancelOrder, so the sweep is idempotent and
// one failure does not stop the rest. Returns the IDs that were cancelled.
func SweepExpiredPendingOrders(db *gorm.DB, timeout time.Duration) ([]uint, error) {
	cutoff := time.Now().Add(-timeout)

	var expired []models.Order
	err := db.
		Where("status = ? AND payment_started_at IS NOT NULL AND payment_started_at < ?",
			models.OrderPendingPayment, cutoff).
		Where("id NOT IN (?)", db.Model(&models.PaymentProof{}).Select("order_id")).
		Find(&expired).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired orders: %w", err)
	}

	var cancelled []uint
	for _, order := range expired {
		if err := CancelOrder(db, order.ID); err != nil {
			config.Logger().Error("sweep failed to cancel order",
				zap.Uint("order_id", order.ID), zap.Error(err))
			continue
		}
		cancelled = append(cancelled, order.ID)
	}

	if len(cancelled) > 0 {
		config.Logger().Info("expired pending orders swept", zap.Uints("order_ids", cancelled))
	}
	return cancelled, nil
}

// DeleteOrder removes a cancelled order together with its items and proof.
// Orders in any other status cannot be deleted.
func DeleteOrder(db *gorm.DB, orderID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("PaymentProof").First(&order, orderID).Error; err != nil {
			return err
		}
		if order.Status != models.OrderCancelled {
			return &CannotDeleteError{Reason: "only cancelled orders can be deleted"}
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if order.PaymentProof != nil {
			if err := tx.Delete(order.PaymentProof).Error; err != nil {
				return fmt.Errorf("failed to delete payment proof: %w", err)
			}
		}
		return tx.Delete(&order).Error
	})
}

// ListOrders returns orders for the admin screen, optionally filtered by
// batch and status, newest first
func ListOrders(db *gorm.DB, batchID uint, status string) ([]models.Order, error) {
	query := db.Preload("Items.Product").Preload("PaymentProof").Order("created_at DESC")
	if batchID != 0 {
		query = query.Where("batch_id = ?", batchID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
