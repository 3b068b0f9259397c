package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"settlement-service/internal/models"
)

type CommissionService struct {
	DB *gorm.DB
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{DB: db}
}

// ReleaseCommission moves one held commission from the affiliate's pending
// balance to available. Idempotent: the cleared-flag flip is a conditional
// update, so the asynq task and the recovery sweep can both run without
// double-releasing.
func (s *CommissionService) ReleaseCommission(transactionID int) error {
	var trx models.LedgerTransaction
	if err := s.DB.First(&trx, transactionID).Error; err != nil {
		return err
	}
	if trx.AffiliateID == 0 || trx.AffiliateCommission <= 0 {
		return nil
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LedgerTransaction{}).
			Where("id = ? AND commission_cleared = ?", trx.ID, false).
			UpdateColumn("commission_cleared", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already released by a racing run.
			return nil
		}

		return tx.Model(&models.User{}).
			Where("id = ?", trx.AffiliateID).
			UpdateColumns(map[string]interface{}{
				"pending_balance":   gorm.Expr("pending_balance - ?", trx.AffiliateCommission),
				"available_balance": gorm.Expr("available_balance + ?", trx.AffiliateCommission),
			}).Error
	})
}

// SweepDueCommissions releases every held commission whose clearing window
// has elapsed. Recovery path for releases whose scheduled task was lost.
func (s *CommissionService) SweepDueCommissions() error {
	var due []models.LedgerTransaction
	err := s.DB.
		Where("commission_cleared = ? AND affiliate_id > 0 AND affiliate_commission > 0", false).
		Where("commission_clears_at IS NOT NULL AND commission_clears_at <= ?", time.Now()).
		Find(&due).Error
	if err != nil {
		return err
	}

	released := 0
	for _, trx := range due {
		if err := s.ReleaseCommission(trx.ID); err != nil {
			log.Printf("Error releasing commission for transaction %s: %v", trx.Reference, err)
			continue
		}
		released++
	}
	if released > 0 {
		log.Printf("Commission sweep released %d of %d due commissions", released, len(due))
	}
	return nil
}

// StartScheduler initializes the cron job for the commission clearing sweep.
func (s *CommissionService) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("0 * * * *", func() {
		if err := s.SweepDueCommissions(); err != nil {
			log.Printf("Error in commission sweep: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling commission sweep: %v", err)
		return
	}
	c.Start()
	log.Println("Commission clearing scheduler started (Hourly)")
}
