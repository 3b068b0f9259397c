package models

import (
	"time"
)

// LedgerTransaction is the immutable record of one settled sale. The unique
// index on session_id is the authoritative idempotency guard; the
// application-level lookup in the validator is only an optimization.
type LedgerTransaction struct {
	ID                  int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference           string     `gorm:"column:reference;size:64;not null;uniqueIndex" json:"reference"`
	SessionID           string     `gorm:"column:session_id;size:191;not null;uniqueIndex" json:"session_id"`
	ProductID           int        `gorm:"column:product_id;not null;index" json:"product_id"`
	BuyerID             int        `gorm:"column:buyer_id;not null;index" json:"buyer_id"`
	SellerID            int        `gorm:"column:seller_id;not null;index" json:"seller_id"`
	AffiliateID         int        `gorm:"column:affiliate_id;default:0" json:"affiliate_id"`
	TotalAmount         float64    `gorm:"column:total_amount;type:decimal(20,2);not null" json:"total_amount"`
	PlatformFee         float64    `gorm:"column:platform_fee;type:decimal(20,2);default:0.00" json:"platform_fee"`
	SellerAmount        float64    `gorm:"column:seller_amount;type:decimal(20,2);not null" json:"seller_amount"`
	AffiliateCommission float64    `gorm:"column:affiliate_commission;type:decimal(20,2);default:0.00" json:"affiliate_commission"`
	Status              int        `gorm:"column:status;default:0" json:"status"` // 0: pending, 1: completed
	CommissionCleared   bool       `gorm:"column:commission_cleared;default:false" json:"commission_cleared"`
	CommissionClearsAt  *time.Time `gorm:"column:commission_clears_at" json:"commission_clears_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}
