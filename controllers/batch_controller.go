package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/services"
)

// InitialStockRequest seeds one product's stock when creating a batch
type InitialStockRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Available int  `json:"available" binding:"gte=0"`
}

// CreateBatchRequest represents the request body for creating a batch
type CreateBatchRequest struct {
	Title        string                `json:"title" binding:"required"`
	DeliveryDate time.Time             `json:"delivery_date" binding:"required"`
	InitialStock []InitialStockRequest `json:"initial_stock" binding:"dive"`
}

// CreateBatch handles POST /api/v1/admin/batches - creates a draft batch
// with its seeded stock entries
func CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	initialStock := make([]services.InitialStock, 0, len(req.InitialStock))
	for _, stock := range req.InitialStock {
		initialStock = append(initialStock, services.InitialStock{
			ProductID: stock.ProductID,
			Available: stock.Available,
		})
	}

	batch, err := services.CreateBatch(config.GetDB(), req.Title, req.DeliveryDate, initialStock)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    batch,
	})
}

// ListBatches handles GET /api/v1/admin/batches
func ListBatches(c *gin.Context) {
	batches, err := services.ListBatches(config.GetDB())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    batches,
	})
}

// PublishBatch handles POST /api/v1/admin/batches/:id/publish - opens the
// batch to customers, closing any currently open batch in the same
// transaction
func PublishBatch(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.PublishBatch(config.GetDB(), batchID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Batch published",
	})
}

// CloseBatch handles POST /api/v1/admin/batches/:id/close
func CloseBatch(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.CloseBatch(config.GetDB(), batchID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Batch closed",
	})
}

// DuplicateBatch handles POST /api/v1/admin/batches/:id/duplicate
func DuplicateBatch(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := services.DuplicateBatch(config.GetDB(), batchID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    batch,
	})
}

// DeleteBatch handles DELETE /api/v1/admin/batches/:id - blocked while
// orders reference the batch
func DeleteBatch(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteBatch(config.GetDB(), batchID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Batch deleted",
	})
}

// EditStockRequest represents the request body for a staff stock edit
type EditStockRequest struct {
	TotalStock int `json:"total_stock" binding:"gte=0"`
}

// EditStock handles PUT /api/v1/admin/batches/:id/stock/:productId - sets
// the nominal total stock for one product in the batch
func EditStock(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req EditStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := services.EditStock(config.GetDB(), batchID, productID, req.TotalStock); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stock updated",
	})
}
