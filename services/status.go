package services

import (
	"github.com/kikiminyes/TutyJuicy/models"
)

// validNext is the order status adjacency list. ready only moves forward to
// picked_up; picked_up and cancelled are terminal.
var validNext = map[string]map[string]bool{
	models.OrderPendingPayment:  {models.OrderPaymentReceived: true, models.OrderCancelled: true},
	models.OrderPaymentReceived: {models.OrderPreparing: true, models.OrderCancelled: true},
	models.OrderPreparing:       {models.OrderReady: true, models.OrderCancelled: true},
	models.OrderReady:           {models.OrderPickedUp: true},
	models.OrderPickedUp:        {},
	models.OrderCancelled:       {},
}

// CanTransition reports whether from -> to is a legal order status change
func CanTransition(from, to string) bool {
	return validNext[from][to]
}
