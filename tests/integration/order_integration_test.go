package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/controllers"
	"github.com/kikiminyes/TutyJuicy/middleware"
	"github.com/kikiminyes/TutyJuicy/models"
	"github.com/kikiminyes/TutyJuicy/services"
	"github.com/kikiminyes/TutyJuicy/tests/testutil"
)

// OrderIntegrationTestSuite exercises the storefront checkout and the staff
// order management routes against a real router and database
type OrderIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

// SetupSuite runs once before all tests
func (suite *OrderIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("AUTH0_DOMAIN", "test.auth0.com")
	os.Setenv("AUTH0_AUDIENCE", "https://api.test.com")
	os.Setenv("PORT", "8080")

	cfg, err := config.Load()
	suite.NoError(err)
	suite.cfg = cfg
}

// SetupTest runs before each test
func (suite *OrderIntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.Product{},
		&models.Batch{},
		&models.StockEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentProof{},
	)
	suite.NoError(err)

	config.SetDB(db)
	config.SetConfig(suite.cfg)

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()

	suite.router = gin.New()

	v1 := suite.router.Group("/api/v1")
	{
		v1.GET("/storefront", controllers.GetStorefront)
		v1.POST("/orders", controllers.PlaceOrder)
		v1.GET("/orders/:code", controllers.TrackOrder)
		v1.PUT("/orders/:code/payment-method", controllers.SetPaymentMethod)
		v1.DELETE("/orders/:code/payment-method", controllers.ResetPaymentMethod)
		v1.POST("/orders/:code/payment-proof", controllers.SubmitPaymentProof)
		v1.POST("/orders/:code/cash-confirmation", controllers.ConfirmCashOnPickup)
	}

	admin := suite.router.Group("/admin", testutil.StaffAuthMiddleware("auth0|staff"), middleware.RequireStaff())
	{
		admin.POST("/batches", controllers.CreateBatch)
		admin.POST("/batches/:id/publish", controllers.PublishBatch)
		admin.POST("/batches/:id/close", controllers.CloseBatch)
		admin.GET("/orders", controllers.ListOrders)
		admin.PUT("/orders/:id/status", controllers.AdvanceOrderStatus)
		admin.POST("/orders/:id/cancel", controllers.CancelOrder)
		admin.POST("/orders/sweep", controllers.SweepExpiredOrders)
	}
}

// TearDownTest runs after each test
func (suite *OrderIntegrationTestSuite) TearDownTest() {
	services.SetS3Service(nil)
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (suite *OrderIntegrationTestSuite) request(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func (suite *OrderIntegrationTestSuite) seedOpenBatch(available int) (*models.Batch, *models.Product) {
	product := models.Product{Name: "Mango Juice", Price: 120, Size: "350ml"}
	suite.NoError(suite.db.Create(&product).Error)

	batch := models.Batch{
		Title:        "Weekend Batch",
		DeliveryDate: time.Now().Add(48 * time.Hour),
		Status:       models.BatchOpen,
	}
	suite.NoError(suite.db.Create(&batch).Error)

	entry := models.StockEntry{BatchID: batch.ID, ProductID: product.ID, Available: available}
	suite.NoError(suite.db.Create(&entry).Error)

	return &batch, &product
}

func (suite *OrderIntegrationTestSuite) stockFor(batchID, productID uint) models.StockEntry {
	var entry models.StockEntry
	suite.NoError(suite.db.Where("batch_id = ? AND product_id = ?", batchID, productID).First(&entry).Error)
	return entry
}

// TestCheckoutWorkflow_BrowseOrderPayPickup walks the full customer journey:
// browse the storefront, check out, choose a payment method, upload proof,
// then staff confirm and hand over.
func (suite *OrderIntegrationTestSuite) TestCheckoutWorkflow_BrowseOrderPayPickup() {
	batch, product := suite.seedOpenBatch(10)

	// Step 1: Customer browses the storefront
	w, response := suite.request(http.MethodGet, "/api/v1/storefront", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.True(suite.T(), data["open"].(bool))
	items := data["items"].([]interface{})
	assert.Equal(suite.T(), 1, len(items))
	assert.Equal(suite.T(), float64(10), items[0].(map[string]interface{})["available"])

	// Step 2: Customer checks out
	w, response = suite.request(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"batch_id":       batch.ID,
		"customer_name":  "Ana Reyes",
		"customer_phone": "09171234567",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 3, "unit_price": 120},
		},
	})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	orderData := response["data"].(map[string]interface{})
	code := orderData["code"].(string)
	orderID := int(orderData["id"].(float64))
	assert.Equal(suite.T(), models.OrderPendingPayment, orderData["status"])
	assert.Equal(suite.T(), float64(360), orderData["total_amount"])

	// Stock moved from available to reserved atomically with the order
	entry := suite.stockFor(batch.ID, product.ID)
	assert.Equal(suite.T(), 7, entry.Available)
	assert.Equal(suite.T(), 3, entry.Reserved)

	// Step 3: Customer chooses GCash, which starts the payment clock
	w, response = suite.request(http.MethodPut, "/api/v1/orders/"+code+"/payment-method",
		map[string]interface{}{"payment_method": "gcash"})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	orderData = response["data"].(map[string]interface{})
	assert.NotNil(suite.T(), orderData["payment_started_at"])

	// Step 4: Customer uploads the payment screenshot
	body := &bytes.Buffer{}
	writer := newProofUpload(body, "gcash_screenshot.png")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+code+"/payment-proof", body)
	req.Header.Set("Content-Type", writer)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	// Step 5: Staff walk the order through to pickup
	for _, status := range []string{
		models.OrderPaymentReceived,
		models.OrderPreparing,
		models.OrderReady,
		models.OrderPickedUp,
	} {
		w, _ = suite.request(http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", orderID),
			map[string]interface{}{"status": status})
		assert.Equal(suite.T(), http.StatusOK, w.Code, "transition to %s should succeed", status)
	}

	// Step 6: Customer tracks the completed order
	w, response = suite.request(http.MethodGet, "/api/v1/orders/"+code, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	orderData = response["data"].(map[string]interface{})
	assert.Equal(suite.T(), models.OrderPickedUp, orderData["status"])

	// Pickup released the reservation without putting stock back on sale
	entry = suite.stockFor(batch.ID, product.ID)
	assert.Equal(suite.T(), 7, entry.Available)
	assert.Equal(suite.T(), 0, entry.Reserved)
}

// TestCheckoutWorkflow_CashOrder covers the cash-on-pickup path: no proof
// image, just the confirmation sentinel, and no proof gate on payment.
func (suite *OrderIntegrationTestSuite) TestCheckoutWorkflow_CashOrder() {
	batch, product := suite.seedOpenBatch(5)

	w, response := suite.request(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"batch_id":       batch.ID,
		"customer_name":  "Ana Reyes",
		"customer_phone": "09171234567",
		"payment_method": "cash",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1, "unit_price": 120},
		},
	})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	orderData := response["data"].(map[string]interface{})
	code := orderData["code"].(string)
	orderID := int(orderData["id"].(float64))

	w, _ = suite.request(http.MethodPost, "/api/v1/orders/"+code+"/cash-confirmation", nil)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	// Cash orders pass the payment gate without an uploaded image
	w, _ = suite.request(http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", orderID),
		map[string]interface{}{"status": models.OrderPaymentReceived})
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestCheckoutWorkflow_ProofGateBlocksPayment verifies staff cannot confirm
// payment on a transfer order before the customer uploads proof
func (suite *OrderIntegrationTestSuite) TestCheckoutWorkflow_ProofGateBlocksPayment() {
	batch, product := suite.seedOpenBatch(5)

	_, response := suite.request(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"batch_id":       batch.ID,
		"customer_name":  "Ana Reyes",
		"customer_phone": "09171234567",
		"payment_method": "bank_transfer",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1, "unit_price": 120},
		},
	})
	orderID := int(response["data"].(map[string]interface{})["id"].(float64))

	w, response := suite.request(http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", orderID),
		map[string]interface{}{"status": models.OrderPaymentReceived})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	errorData := response["error"].(map[string]interface{})
	assert.Equal(suite.T(), "PAYMENT_PROOF_REQUIRED", errorData["code"])
}

// TestCheckoutWorkflow_CancelRestoresStock verifies cancellation returns the
// reserved quantity to the storefront
func (suite *OrderIntegrationTestSuite) TestCheckoutWorkflow_CancelRestoresStock() {
	batch, product := suite.seedOpenBatch(5)

	_, response := suite.request(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"batch_id":       batch.ID,
		"customer_name":  "Ana Reyes",
		"customer_phone": "09171234567",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 4, "unit_price": 120},
		},
	})
	orderID := int(response["data"].(map[string]interface{})["id"].(float64))

	entry := suite.stockFor(batch.ID, product.ID)
	assert.Equal(suite.T(), 1, entry.Available)
	assert.Equal(suite.T(), 4, entry.Reserved)

	w, _ := suite.request(http.MethodPost, fmt.Sprintf("/admin/orders/%d/cancel", orderID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	entry = suite.stockFor(batch.ID, product.ID)
	assert.Equal(suite.T(), 5, entry.Available)
	assert.Equal(suite.T(), 0, entry.Reserved)

	// Cancelling again is harmless and does not double-restore
	w, _ = suite.request(http.MethodPost, fmt.Sprintf("/admin/orders/%d/cancel", orderID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	entry = suite.stockFor(batch.ID, product.ID)
	assert.Equal(suite.T(), 5, entry.Available)
	assert.Equal(suite.T(), 0, entry.Reserved)
}

// TestBatchWorkflow_PublishSwapsOpenBatch verifies publishing a new batch
// closes the old one and swaps what the storefront shows
func (suite *OrderIntegrationTestSuite) TestBatchWorkflow_PublishSwapsOpenBatch() {
	suite.seedOpenBatch(5)

	product2 := models.Product{Name: "Calamansi Juice", Price: 100, Size: "350ml"}
	suite.NoError(suite.db.Create(&product2).Error)

	// Staff create next week's batch as a draft
	w, response := suite.request(http.MethodPost, "/admin/batches", map[string]interface{}{
		"title":         "Next Weekend",
		"delivery_date": time.Now().Add(9 * 24 * time.Hour).Format(time.RFC3339),
		"initial_stock": []map[string]interface{}{
			{"product_id": product2.ID, "available": 8},
		},
	})
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	draftID := int(response["data"].(map[string]interface{})["id"].(float64))

	// Drafts never show on the storefront
	_, response = suite.request(http.MethodGet, "/api/v1/storefront", nil)
	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "Weekend Batch", data["batch"].(map[string]interface{})["title"])

	// Publishing swaps the open batch in one step
	w, _ = suite.request(http.MethodPost, fmt.Sprintf("/admin/batches/%d/publish", draftID), nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	_, response = suite.request(http.MethodGet, "/api/v1/storefront", nil)
	data = response["data"].(map[string]interface{})
	assert.True(suite.T(), data["open"].(bool))
	assert.Equal(suite.T(), "Next Weekend", data["batch"].(map[string]interface{})["title"])

	var openCount int64
	suite.db.Model(&models.Batch{}).Where("status = ?", models.BatchOpen).Count(&openCount)
	assert.Equal(suite.T(), int64(1), openCount)
}

// TestSweepWorkflow_ExpiredOrdersCancelled verifies the sweep endpoint
// cancels stale pending orders and frees their stock
func (suite *OrderIntegrationTestSuite) TestSweepWorkflow_ExpiredOrdersCancelled() {
	batch, product := suite.seedOpenBatch(10)

	_, response := suite.request(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"batch_id":       batch.ID,
		"customer_name":  "Ana Reyes",
		"customer_phone": "09171234567",
		"payment_method": "gcash",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 6, "unit_price": 120},
		},
	})
	orderID := int(response["data"].(map[string]interface{})["id"].(float64))

	// Backdate the payment clock beyond the timeout window
	startedLongAgo := time.Now().Add(-2 * suite.cfg.PaymentTimeout)
	suite.NoError(suite.db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("payment_started_at", startedLongAgo).Error)

	w, response := suite.request(http.MethodPost, "/admin/orders/sweep", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(1), data["cancelled_count"])

	var order models.Order
	suite.NoError(suite.db.First(&order, orderID).Error)
	assert.Equal(suite.T(), models.OrderCancelled, order.Status)

	entry := suite.stockFor(batch.ID, product.ID)
	assert.Equal(suite.T(), 10, entry.Available)
	assert.Equal(suite.T(), 0, entry.Reserved)
}

// newProofUpload writes a small multipart body with a "proof" file part and
// returns the content type to set on the request
func newProofUpload(body *bytes.Buffer, filename string) string {
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("proof", filename)
	part.Write([]byte("fake image content"))
	writer.Close()
	return writer.FormDataContentType()
}

// TestOrderIntegrationSuite runs the test suite
func TestOrderIntegrationSuite(t *testing.T) {
	suite.Run(t, new(OrderIntegrationTestSuite))
}
