package services

import (
	"log"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"settlement-service/internal/models"
)

// NOTE: These tests require a running MySQL instance.
// For this environment, we will write them to be ready for integration testing.
// In a real CI, we would spin up a container.

var testDB *gorm.DB

func setup() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("Skipping DB tests: DATABASE_URL not set")
		return
	}

	var err error
	testDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return
	}

	// Migrate schemas
	testDB.AutoMigrate(
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
}

func cleanup() {
	if testDB != nil {
		testDB.Exec("DELETE FROM affiliate_links")
		testDB.Exec("DELETE FROM download_tokens")
		testDB.Exec("DELETE FROM invoices")
		testDB.Exec("DELETE FROM invoice_counters")
		testDB.Exec("DELETE FROM validation_logs")
		testDB.Exec("DELETE FROM ledger_transactions")
		testDB.Exec("DELETE FROM product_modules")
		testDB.Exec("DELETE FROM products")
		testDB.Exec("DELETE FROM users")
	}
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func TestSettleCommitsBreakdown(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	db := testDB
	db.Create(&models.User{ID: 101, Username: "seller", Email: "seller@example.com"})
	db.Create(&models.User{ID: 102, Username: "buyer", Email: "buyer@example.com"})
	db.Create(&models.Product{ID: 11, SellerID: 101, Title: "Course", Price: 29.99})

	svc := NewSettlementService(db, nil)
	trx, err := svc.Settle(&Breakdown{
		SessionID:    "sess_settle_1",
		ProductID:    11,
		BuyerID:      102,
		SellerID:     101,
		TotalAmount:  29.99,
		PlatformFee:  8.70,
		SellerAmount: 21.29,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	assert.NotEmpty(t, trx.Reference)
	assert.Equal(t, 1, trx.Status)

	// Split conservation within a cent.
	sum := trx.PlatformFee + trx.SellerAmount + trx.AffiliateCommission
	if math.Abs(sum-trx.TotalAmount) > 0.01 {
		t.Errorf("split %v does not sum to total %v", sum, trx.TotalAmount)
	}

	var seller models.User
	db.First(&seller, 101)
	assert.Equal(t, 21.29, seller.TotalEarnings)
	assert.Equal(t, 21.29, seller.AvailableBalance)
	assert.Equal(t, 1, seller.Level)
}

func TestSettleReplayedSessionIsDuplicate(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	db := testDB
	db.Create(&models.User{ID: 111, Username: "seller", Email: "seller@example.com"})
	db.Create(&models.User{ID: 112, Username: "buyer", Email: "buyer@example.com"})
	db.Create(&models.Product{ID: 12, SellerID: 111, Title: "Ebook", Price: 50.00})

	b := &Breakdown{
		SessionID:    "sess_replay_1",
		ProductID:    12,
		BuyerID:      112,
		SellerID:     111,
		TotalAmount:  50.00,
		PlatformFee:  15.00,
		SellerAmount: 35.00,
	}

	svc := NewSettlementService(db, nil)
	if _, err := svc.Settle(b); err != nil {
		t.Fatalf("first Settle failed: %v", err)
	}

	_, err := svc.Settle(b)
	assert.ErrorIs(t, err, ErrDuplicateSession)

	// Exactly one ledger row, and balances credited exactly once.
	var count int64
	db.Model(&models.LedgerTransaction{}).Where("session_id = ?", "sess_replay_1").Count(&count)
	assert.Equal(t, int64(1), count)

	var seller models.User
	db.First(&seller, 111)
	assert.Equal(t, 35.00, seller.TotalEarnings)
	assert.Equal(t, 35.00, seller.AvailableBalance)
}

func TestSettlePromotesSellerTier(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	db := testDB
	db.Create(&models.User{ID: 121, Username: "seller", Email: "seller@example.com", TotalEarnings: 990, AvailableBalance: 990, Level: 1})
	db.Create(&models.User{ID: 122, Username: "buyer", Email: "buyer@example.com"})
	db.Create(&models.Product{ID: 13, SellerID: 121, Title: "Template", Price: 20.00})

	svc := NewSettlementService(db, nil)
	_, err := svc.Settle(&Breakdown{
		SessionID:    "sess_promote_1",
		ProductID:    13,
		BuyerID:      122,
		SellerID:     121,
		TotalAmount:  20.00,
		PlatformFee:  6.00,
		SellerAmount: 14.00,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// 990 + 14 crosses the 1,000 threshold into tier 2.
	var seller models.User
	db.First(&seller, 121)
	assert.Equal(t, 1004.00, seller.TotalEarnings)
	assert.Equal(t, 2, seller.Level)
}

func TestSettleRollsBackOnMidCommitFailure(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	db := testDB
	db.Create(&models.User{ID: 142, Username: "buyer", Email: "buyer@example.com"})
	db.Create(&models.Product{ID: 15, SellerID: 141, Title: "Workbook", Price: 30.00})

	// Seller row 141 does not exist, so the commit fails after the ledger
	// insert. The whole settlement must roll back, not strand a ledger row
	// that turns every redelivery into a duplicate.
	b := &Breakdown{
		SessionID:    "sess_rollback_1",
		ProductID:    15,
		BuyerID:      142,
		SellerID:     141,
		TotalAmount:  30.00,
		PlatformFee:  9.00,
		SellerAmount: 21.00,
	}

	svc := NewSettlementService(db, nil)
	_, err := svc.Settle(b)
	if err == nil {
		t.Fatal("expected Settle to fail without a seller row")
	}
	assert.NotErrorIs(t, err, ErrDuplicateSession)

	var count int64
	db.Model(&models.LedgerTransaction{}).Where("session_id = ?", "sess_rollback_1").Count(&count)
	assert.Equal(t, int64(0), count)

	// Redelivery once the seller exists settles normally.
	db.Create(&models.User{ID: 141, Username: "seller", Email: "seller@example.com"})
	trx, err := svc.Settle(b)
	if err != nil {
		t.Fatalf("redelivered Settle failed: %v", err)
	}
	assert.NotEmpty(t, trx.Reference)

	var seller models.User
	db.First(&seller, 141)
	assert.Equal(t, 21.00, seller.TotalEarnings)
	assert.Equal(t, 21.00, seller.AvailableBalance)
}

func TestSettleHoldsAffiliateCommission(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	db := testDB
	db.Create(&models.User{ID: 131, Username: "seller", Email: "seller@example.com"})
	db.Create(&models.User{ID: 132, Username: "buyer", Email: "buyer@example.com"})
	db.Create(&models.User{ID: 133, Username: "affiliate", Email: "aff@example.com"})
	db.Create(&models.Product{ID: 14, SellerID: 131, Title: "Preset Pack", Price: 40.00})

	svc := NewSettlementService(db, nil)
	trx, err := svc.Settle(&Breakdown{
		SessionID:           "sess_affiliate_hold_1",
		ProductID:           14,
		BuyerID:             132,
		SellerID:            131,
		AffiliateID:         133,
		TotalAmount:         40.00,
		PlatformFee:         12.00,
		AffiliateCommission: 4.00,
		SellerAmount:        24.00,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// Commission is held, not spendable, until the clearing window elapses.
	assert.NotNil(t, trx.CommissionClearsAt)
	assert.False(t, trx.CommissionCleared)

	var affiliate models.User
	db.First(&affiliate, 133)
	assert.Equal(t, 4.00, affiliate.PendingBalance)
	assert.Equal(t, 0.00, affiliate.AvailableBalance)
}
