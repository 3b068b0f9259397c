package models

import (
	"time"
)

// DownloadToken grants single-buyer access to one deliverable module.
// BuyerID is nullable for guest checkouts. Invariant: ClickCount never
// exceeds MaxClicks; the redemption path enforces this with a conditional
// update, not a read-then-write.
type DownloadToken struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Token         string    `gorm:"column:token;size:128;not null;uniqueIndex" json:"token"`
	TransactionID int       `gorm:"column:transaction_id;not null;index:idx_token_trx_module" json:"transaction_id"`
	ModuleID      int       `gorm:"column:module_id;not null;index:idx_token_trx_module" json:"module_id"`
	BuyerID       *int      `gorm:"column:buyer_id" json:"buyer_id"`
	ClickCount    int       `gorm:"column:click_count;default:0" json:"click_count"`
	MaxClicks     int       `gorm:"column:max_clicks;not null" json:"max_clicks"`
	ExpiresAt     time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	LastIP        string    `gorm:"column:last_ip;size:64" json:"last_ip"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DownloadToken) TableName() string {
	return "download_tokens"
}
