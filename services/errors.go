package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBatchNotOpen is returned when a checkout arrives for a batch that is not
// currently open (it may have closed between page load and submit).
var ErrBatchNotOpen = errors.New("batch is not open for orders")

// StockShortfall describes one product line that could not be reserved
type StockShortfall struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// InsufficientStockError is returned when one or more requested lines exceed
// the available stock. The enclosing transaction is rolled back; no partial
// order exists.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("product %d: requested %d, available %d", s.ProductID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// InvalidStockEditError is returned when a staff stock edit would shrink the
// nominal total below the quantity already committed to orders.
type InvalidStockEditError struct {
	ProductID       uint
	RequestedTotal  int
	CurrentReserved int
}

func (e *InvalidStockEditError) Error() string {
	return fmt.Sprintf("invalid stock edit for product %d: requested total %d is below reserved %d",
		e.ProductID, e.RequestedTotal, e.CurrentReserved)
}

// IllegalStatusTransitionError is returned when a requested status change is
// not in the state machine's adjacency list.
type IllegalStatusTransitionError struct {
	From string
	To   string
}

func (e *IllegalStatusTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

// CannotDeleteError is returned when a delete is blocked because other
// records still reference the target.
type CannotDeleteError struct {
	Reason string
}

func (e *CannotDeleteError) Error() string {
	return "cannot delete: " + e.Reason
}

// PaymentProofRequiredError is returned when staff try to mark a non-cash
// order as paid before any payment proof exists.
type PaymentProofRequiredError struct {
	OrderID uint
}

func (e *PaymentProofRequiredError) Error() string {
	return fmt.Sprintf("order %d has no payment proof", e.OrderID)
}
