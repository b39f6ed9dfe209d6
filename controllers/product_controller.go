package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/models"
	"github.com/kikiminyes/TutyJuicy/services"
)

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Size        string  `json:"size"`
	Description string  `json:"description"`
}

// CreateProduct handles POST /api/v1/admin/products
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Size:        req.Size,
		Description: req.Description,
	}
	if err := config.GetDB().Create(&product).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// ListProducts handles GET /api/v1/admin/products
func ListProducts(c *gin.Context) {
	var products []models.Product
	if err := config.GetDB().Order("name").Find(&products).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// UpdateProductRequest represents the request body for editing a product.
// Pointer fields distinguish "not sent" from zero values.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Size        *string  `json:"size"`
	Description *string  `json:"description"`
}

// UpdateProduct handles PUT /api/v1/admin/products/:id. Price changes never
// touch historical orders: line items keep the price captured at order time.
func UpdateProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			respondServiceError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// DeleteProduct handles DELETE /api/v1/admin/products/:id - blocked while
// the product is referenced by active-batch stock or historical orders
func DeleteProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteProduct(config.GetDB(), productID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted",
	})
}
