package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"settlement-service/internal/models"
)

var DB *gorm.DB

func Connect() {
	var err error
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	// TranslateError maps driver duplicate-key failures to
	// gorm.ErrDuplicatedKey, which the settlement path relies on for
	// idempotent session handling.
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	log.Println("Database connection established")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductModule{},
		&models.LedgerTransaction{},
		&models.DownloadToken{},
		&models.Invoice{},
		&models.InvoiceCounter{},
		&models.ValidationLog{},
		&models.AffiliateLink{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	// Seed the invoice counter row so number assignment can lock it.
	DB.FirstOrCreate(&models.InvoiceCounter{ID: 1})

	log.Println("Database migration completed")
}
