package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"settlement-service/internal/consumers"
	"settlement-service/internal/database"
	"settlement-service/internal/services"
	"settlement-service/internal/worker"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system env")
		}
	}

	// Connect DB
	database.Connect()
	db := database.DB

	// Init Services
	downloadService := services.NewDownloadService(db)
	invoiceService := services.NewInvoiceService(db)
	commissionService := services.NewCommissionService(db)
	mailerClient := services.NewMailerClient()

	// Processor
	processor := consumers.NewSettlementProcessor(db, downloadService, invoiceService, commissionService, mailerClient)

	// Redis
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	log.Println("Starting Asynq Worker...")
	worker.StartWorker(redisOpt, processor)
}
