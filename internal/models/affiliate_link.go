package models

import (
	"time"
)

type AffiliateLink struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"column:user_id;not null;index:idx_affiliate_user_product" json:"user_id"`
	ProductID int       `gorm:"column:product_id;not null;index:idx_affiliate_user_product" json:"product_id"`
	Code      string    `gorm:"column:code;size:64;not null;uniqueIndex" json:"code"`
	Clicks    int64     `gorm:"column:clicks;default:0" json:"clicks"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AffiliateLink) TableName() string {
	return "affiliate_links"
}
