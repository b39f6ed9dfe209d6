package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kikiminyes/TutyJuicy/services"
	"github.com/kikiminyes/TutyJuicy/utils"
)

// respondServiceError translates the service error taxonomy into the API's
// response envelope. Raw persistence errors never reach the client.
func respondServiceError(c *gin.Context, err error) {
	var (
		stockErr      *services.InsufficientStockError
		editErr       *services.InvalidStockEditError
		transitionErr *services.IllegalStatusTransitionError
		deleteErr     *services.CannotDeleteError
		proofErr      *services.PaymentProofRequiredError
		uploadErr     *utils.FileUploadError
	)

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INSUFFICIENT_STOCK",
				"message": "Some items are no longer available in the requested quantity",
				"details": stockErr.Shortfalls,
			},
		})
	case errors.Is(err, services.ErrBatchNotOpen):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BATCH_NOT_OPEN",
				"message": "This pre-order is closed. Please return to the menu.",
			},
		})
	case errors.As(err, &editErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STOCK_EDIT",
				"message": err.Error(),
			},
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ILLEGAL_STATUS_TRANSITION",
				"message": err.Error(),
			},
		})
	case errors.As(err, &deleteErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CANNOT_DELETE",
				"message": err.Error(),
			},
		})
	case errors.As(err, &proofErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_PROOF_REQUIRED",
				"message": "A payment proof must be submitted before the order can be marked as paid",
			},
		})
	case errors.Is(err, services.ErrActionNotAvailable):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ACTION_NOT_AVAILABLE",
				"message": "This action is not available right now",
			},
		})
	case errors.As(err, &uploadErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    uploadErr.Code,
				"message": uploadErr.Message,
			},
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "The requested resource was not found",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Something went wrong. Please try again.",
			},
		})
	}
}

// respondValidationError reports a request binding failure
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}
