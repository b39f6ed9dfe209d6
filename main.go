package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kikiminyes/TutyJuicy/config"
	"github.com/kikiminyes/TutyJuicy/controllers"
	"github.com/kikiminyes/TutyJuicy/middleware"
	"github.com/kikiminyes/TutyJuicy/models"
	"github.com/kikiminyes/TutyJuicy/services"
)

func main() {
	// Basic logging until the structured logger is up
	log.Println("Starting TutyJuicy pre-order API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.InitLogger(cfg.GoEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Batch{},
		&models.StockEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentProof{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	logger.Info("Database migration completed successfully")

	// Payment proofs go to S3 when a bucket is configured, otherwise to the
	// local upload directory
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
	} else {
		logger.Warn("AWS_S3_BUCKET not set, storing payment proofs locally",
			zap.String("upload_dir", cfg.UploadDir))
	}

	// Checkout idempotency tokens live in redis when available
	if cfg.RedisURL != "" {
		store, err := services.NewIdempotencyStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		services.SetIdempotencyStore(store)
	} else {
		logger.Warn("REDIS_URL not set, checkout retries are not deduplicated")
	}

	router := setupRouter(cfg)

	// The payment-timeout sweep runs on a plain ticker; the operation itself
	// is idempotent, so an overlapping manual trigger is harmless.
	go runSweeper(cfg)

	port := ":" + cfg.Port
	logger.Info("Server is running", zap.String("port", port))
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires all routes. Storefront routes are anonymous; admin
// routes require a staff JWT.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Storefront (anonymous customers)
		v1.GET("/storefront", controllers.GetStorefront)
		v1.POST("/orders", controllers.PlaceOrder)
		v1.GET("/orders/:code", controllers.TrackOrder)
		v1.PUT("/orders/:code/payment-method", controllers.SetPaymentMethod)
		v1.DELETE("/orders/:code/payment-method", controllers.ResetPaymentMethod)
		v1.POST("/orders/:code/payment-proof", controllers.SubmitPaymentProof)
		v1.POST("/orders/:code/cash-confirmation", controllers.ConfirmCashOnPickup)
		v1.GET("/uploads/:filename", controllers.GetUploadedProof)

		// Staff
		admin := v1.Group("/admin")
		admin.Use(middleware.EnsureValidToken(cfg), middleware.RequireStaff())
		{
			admin.POST("/products", controllers.CreateProduct)
			admin.GET("/products", controllers.ListProducts)
			admin.PUT("/products/:id", controllers.UpdateProduct)
			admin.DELETE("/products/:id", controllers.DeleteProduct)

			admin.POST("/batches", controllers.CreateBatch)
			admin.GET("/batches", controllers.ListBatches)
			admin.POST("/batches/:id/publish", controllers.PublishBatch)
			admin.POST("/batches/:id/close", controllers.CloseBatch)
			admin.POST("/batches/:id/duplicate", controllers.DuplicateBatch)
			admin.DELETE("/batches/:id", controllers.DeleteBatch)
			admin.PUT("/batches/:id/stock/:productId", controllers.EditStock)

			admin.GET("/orders", controllers.ListOrders)
			admin.PUT("/orders/:id/status", controllers.AdvanceOrderStatus)
			admin.PUT("/orders/status", controllers.BulkAdvanceOrderStatus)
			admin.POST("/orders/:id/cancel", controllers.CancelOrder)
			admin.DELETE("/orders/:id", controllers.DeleteOrder)
			admin.GET("/orders/:id/proof-url", controllers.GetPaymentProofURL)
			admin.POST("/orders/sweep", controllers.SweepExpiredOrders)
		}
	}

	return router
}

// runSweeper periodically cancels pending orders whose payment window
// expired without a proof
func runSweeper(cfg *config.Config) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		cancelled, err := services.SweepExpiredPendingOrders(config.GetDB(), cfg.PaymentTimeout)
		if err != nil {
			config.Logger().Error("payment timeout sweep failed", zap.Error(err))
			continue
		}
		if len(cancelled) > 0 {
			config.Logger().Info("payment timeout sweep cancelled orders",
				zap.Int("count", len(cancelled)))
		}
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "TutyJuicy API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
