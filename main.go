package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"settlement-service/internal/database"
	"settlement-service/internal/handlers"
	"settlement-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Init Services
	validationService := services.NewValidationService(db)
	settlementService := services.NewSettlementService(db, asynqClient)
	invoiceService := services.NewInvoiceService(db)
	downloadService := services.NewDownloadService(db)
	commissionService := services.NewCommissionService(db)
	sellerService := services.NewSellerService(db)
	affiliateService := services.NewAffiliateService(db)

	webhookSecret := os.Getenv("WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Fatal("WEBHOOK_SECRET is not set")
	}

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(webhookSecret, validationService, settlementService)
	downloadHandler := handlers.NewDownloadHandler(downloadService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	sellerHandler := handlers.NewSellerHandler(sellerService)
	auditHandler := handlers.NewAuditHandler(validationService)
	affiliateHandler := handlers.NewAffiliateHandler(affiliateService)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome To Settlement Service",
		})
	})

	r.POST("/webhooks/payments", webhookHandler.HandlePaymentWebhook)
	r.GET("/downloads/:token", downloadHandler.Redeem)
	r.GET("/invoices/:token", invoiceHandler.Show)
	r.GET("/sellers/:id/level", sellerHandler.LevelSummary)
	r.GET("/validation-logs", auditHandler.ListValidationLogs)
	r.GET("/a/:code", affiliateHandler.TrackClick)

	// Start Cron Schedulers
	commissionService.StartScheduler()
	downloadService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
