package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/services"
)

// parseIDParam reads a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// ListOrders handles GET /api/v1/admin/orders - all orders for staff,
// optionally filtered by ?batch_id= and ?status=
func ListOrders(c *gin.Context) {
	var batchID uint
	if raw := c.Query("batch_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondValidationError(c, err)
			return
		}
		batchID = uint(parsed)
	}

	orders, err := services.ListOrders(config.GetDB(), batchID, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// AdvanceStatusRequest represents the request body for a status change
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending_payment payment_received preparing ready picked_up cancelled"`
}

// AdvanceOrderStatus handles PUT /api/v1/admin/orders/:id/status
func AdvanceOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := services.AdvanceOrderStatus(config.GetDB(), orderID, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
	})
}

// BulkAdvanceStatusRequest represents the request body for a bulk status change
type BulkAdvanceStatusRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required,min=1"`
	Status   string `json:"status" binding:"required,oneof=pending_payment payment_received preparing ready picked_up cancelled"`
}

// BulkAdvanceOrderStatus handles PUT /api/v1/admin/orders/status. Each order
// is updated independently; failures are reported per order without blocking
// the rest.
func BulkAdvanceOrderStatus(c *gin.Context) {
	var req BulkAdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, failures := services.BulkAdvanceStatus(config.GetDB(), req.OrderIDs, req.Status)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"updated":  updated,
			"failures": failures,
		},
	})
}

// CancelOrder handles POST /api/v1/admin/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.CancelOrder(config.GetDB(), orderID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled",
	})
}

// DeleteOrder handles DELETE /api/v1/admin/orders/:id - only cancelled
// orders can be deleted
func DeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteOrder(config.GetDB(), orderID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// GetPaymentProofURL handles GET /api/v1/admin/orders/:id/proof-url - a
// viewing URL for the order's payment proof
func GetPaymentProofURL(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	url, err := services.GetPaymentProofURL(config.GetDB(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url": url,
		},
	})
}

// SweepExpiredOrders handles POST /api/v1/admin/orders/sweep - cancels
// pending orders whose payment window expired. Also run periodically by the
// background ticker; safe to trigger twice.
func SweepExpiredOrders(c *gin.Context) {
	cfg := config.GetConfig()

	cancelled, err := services.SweepExpiredPendingOrders(config.GetDB(), cfg.PaymentTimeout)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"cancelled_count": len(cancelled),
			"cancelled_ids":   cancelled,
		},
	})
}
