package models

import (
	"time"
)

// Order statuses
const (
	OrderPendingPayment  = "pending_payment"
	OrderPaymentReceived = "payment_received"
	OrderPreparing       = "preparing"
	OrderReady           = "ready"
	OrderPickedUp        = "picked_up"
	OrderCancelled       = "cancelled"
)

// Payment methods. PaymentPending means the customer has not picked one yet.
const (
	PaymentPending      = "pending"
	PaymentGCash        = "gcash"
	PaymentBankTransfer = "bank_transfer"
	PaymentCash         = "cash"
)

// IsCashMethod reports whether a payment method settles on pickup,
// which exempts the order from the payment-proof requirement.
func IsCashMethod(method string) bool {
	return method == PaymentCash
}

// Order represents a placed pre-order. Orders are only ever created through
// the reservation transaction, together with their items and stock reservation.
type Order struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	Code             string        `gorm:"uniqueIndex;not null" json:"code"` // public tracking handle
	BatchID          uint          `gorm:"not null;index" json:"batch_id"`
	Batch            Batch         `gorm:"foreignKey:BatchID" json:"-"`
	CustomerName     string        `gorm:"not null" json:"customer_name"`
	CustomerPhone    string        `gorm:"not null" json:"customer_phone"`
	CustomerAddress  string        `json:"customer_address"`
	Status           string        `gorm:"not null;default:'pending_payment';index" json:"status"`
	PaymentMethod    string        `gorm:"not null;default:'pending'" json:"payment_method"`
	TotalAmount      float64       `json:"total_amount"`
	PaymentStartedAt *time.Time    `json:"payment_started_at"` // set when the customer enters the payment step
	Items            []OrderItem   `gorm:"foreignKey:OrderID" json:"items"`
	PaymentProof     *PaymentProof `gorm:"foreignKey:OrderID" json:"payment_proof,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// DisplayTotal returns the denormalized total when present, otherwise the
// sum over line items. Historical orders keep the prices captured at order
// time, so this never repriced anything.
func (o *Order) DisplayTotal() float64 {
	if o.TotalAmount > 0 {
		return o.TotalAmount
	}
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.PricePerItem
	}
	return total
}

// IsTerminal reports whether the order can no longer change status
func (o *Order) IsTerminal() bool {
	return o.Status == OrderPickedUp || o.Status == OrderCancelled
}
