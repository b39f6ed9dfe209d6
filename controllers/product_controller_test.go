package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kikiminyes/TutyJuicy/middleware"
	"github.com/kikiminyes/TutyJuicy/models"
)

func setupProductAdminRouter() *gin.Engine {
	router := setupTestRouter()
	admin := router.Group("/admin", mockStaffMiddleware("auth0|staff1", "staff"), middleware.RequireStaff())
	{
		admin.POST("/products", CreateProduct)
		admin.GET("/products", ListProducts)
		admin.PUT("/products/:id", UpdateProduct)
		admin.DELETE("/products/:id", DeleteProduct)
	}
	return router
}

func TestCreateProduct(t *testing.T) {
	db := setupControllerTestDB(t)
	router := setupProductAdminRouter()

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Successfully create product",
			requestBody: map[string]interface{}{
				"name":        "Mango Juice",
				"price":       120,
				"size":        "350ml",
				"description": "Fresh mangoes, no sugar added",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Fail with missing name",
			requestBody: map[string]interface{}{
				"price": 120,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with zero price",
			requestBody: map[string]interface{}{
				"name":  "Free Juice",
				"price": 0,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/admin/products", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				assertErrorCode(t, w, tt.expectedError)
			} else {
				data := parseResponse(t, w)["data"].(map[string]interface{})
				assert.Equal(t, "Mango Juice", data["name"])
				assert.Equal(t, float64(120), data["price"])
			}
		})
	}

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListProductsSortedByName(t *testing.T) {
	db := setupControllerTestDB(t)

	for _, name := range []string{"Watermelon Juice", "Calamansi Juice", "Mango Juice"} {
		assert.NoError(t, db.Create(&models.Product{Name: name, Price: 100}).Error)
	}

	router := setupProductAdminRouter()
	w := performJSON(router, http.MethodGet, "/admin/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 3)
	assert.Equal(t, "Calamansi Juice", data[0].(map[string]interface{})["name"])
	assert.Equal(t, "Watermelon Juice", data[2].(map[string]interface{})["name"])
}

func TestUpdateProduct(t *testing.T) {
	db := setupControllerTestDB(t)

	product := models.Product{Name: "Mango Juice", Price: 120, Size: "350ml"}
	assert.NoError(t, db.Create(&product).Error)

	router := setupProductAdminRouter()

	// Partial update: only the price changes
	w := performJSON(router, http.MethodPut, "/admin/products/1",
		map[string]interface{}{"price": 135})
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Product
	assert.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, float64(135), reloaded.Price)
	assert.Equal(t, "Mango Juice", reloaded.Name)
	assert.Equal(t, "350ml", reloaded.Size)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	setupControllerTestDB(t)
	router := setupProductAdminRouter()

	w := performJSON(router, http.MethodPut, "/admin/products/999",
		map[string]interface{}{"price": 135})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "NOT_FOUND")
}

func TestUpdateProduct_PriceDoesNotTouchHistoricalOrders(t *testing.T) {
	db := setupControllerTestDB(t)
	batch, product := seedCatalog(t, db, models.BatchOpen, 5)

	order := placeOrderForAdminTest(t, db, batch, product, 2)

	router := setupProductAdminRouter()
	w := performJSON(router, http.MethodPut, "/admin/products/1",
		map[string]interface{}{"price": 200})
	assert.Equal(t, http.StatusOK, w.Code)

	var item models.OrderItem
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&item).Error)
	assert.Equal(t, float64(120), item.PricePerItem)
}

func TestDeleteProductEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)

	product := models.Product{Name: "Mango Juice", Price: 120}
	assert.NoError(t, db.Create(&product).Error)

	router := setupProductAdminRouter()

	w := performJSON(router, http.MethodDelete, "/admin/products/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteProductEndpoint_BlockedByStock(t *testing.T) {
	db := setupControllerTestDB(t)
	seedCatalog(t, db, models.BatchOpen, 5)

	router := setupProductAdminRouter()

	w := performJSON(router, http.MethodDelete, "/admin/products/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorCode(t, w, "CANNOT_DELETE")
}
