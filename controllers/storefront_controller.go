package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/services"
)

// GetStorefront handles GET /api/v1/storefront - returns the open batch and
// its per-product availability. Draft and closed batches are never exposed.
func GetStorefront(c *gin.Context) {
	db := config.GetDB()

	batch, err := services.GetOpenBatchWithStock(db)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if batch == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"open": false,
			},
		})
		return
	}

	items := make([]gin.H, 0, len(batch.StockEntries))
	for _, entry := range batch.StockEntries {
		items = append(items, gin.H{
			"product":   entry.Product,
			"available": entry.Available,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"open": true,
			"batch": gin.H{
				"id":            batch.ID,
				"title":         batch.Title,
				"delivery_date": batch.DeliveryDate,
			},
			"items": items,
		},
	})
}

// CheckoutItemRequest is one line of a checkout request
type CheckoutItemRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
}

// CheckoutRequest represents the request body for placing an order
type CheckoutRequest struct {
	BatchID         uint                  `json:"batch_id" binding:"required"`
	CustomerName    string                `json:"customer_name" binding:"required"`
	CustomerPhone   string                `json:"customer_phone" binding:"required"`
	CustomerAddress string                `json:"customer_address"`
	PaymentMethod   string                `json:"payment_method" binding:"omitempty,oneof=gcash bank_transfer cash"`
	Items           []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	RequestToken    string                `json:"request_token"`
}

// PlaceOrder handles POST /api/v1/orders - the checkout. Stock validation,
// order creation, and reservation happen in one atomic transaction.
func PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	items := make([]services.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.PlaceOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := services.PlaceOrder(config.GetDB(), services.PlaceOrderRequest{
		BatchID:         req.BatchID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
		RequestToken:    req.RequestToken,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// TrackOrder handles GET /api/v1/orders/:code - order status for customers
func TrackOrder(c *gin.Context) {
	order, err := services.GetOrderByCode(config.GetDB(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// SetPaymentMethodRequest represents the request body for choosing a payment method
type SetPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=gcash bank_transfer cash"`
}

// SetPaymentMethod handles PUT /api/v1/orders/:code/payment-method
func SetPaymentMethod(c *gin.Context) {
	var req SetPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := services.SetPaymentMethod(config.GetDB(), c.Param("code"), req.PaymentMethod)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ResetPaymentMethod handles DELETE /api/v1/orders/:code/payment-method
func ResetPaymentMethod(c *gin.Context) {
	order, err := services.ResetPaymentMethod(config.GetDB(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// SubmitPaymentProof handles POST /api/v1/orders/:code/payment-proof -
// multipart upload of the payment screenshot/photo
func SubmitPaymentProof(c *gin.Context) {
	fileHeader, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A file field named 'proof' is required",
			},
		})
		return
	}

	order, err := services.SubmitPaymentProof(config.GetDB(), c.Param("code"), fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ConfirmCashOnPickup handles POST /api/v1/orders/:code/cash-confirmation
func ConfirmCashOnPickup(c *gin.Context) {
	order, err := services.ConfirmCashOnPickup(config.GetDB(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}
