package models

import (
	"time"
)

type User struct {
	ID               int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string    `gorm:"column:username;size:255;not null" json:"username"`
	Email            string    `gorm:"column:email;size:255;not null" json:"email"`
	TotalEarnings    float64   `gorm:"column:total_earnings;type:decimal(20,2);default:0.00" json:"total_earnings"`
	AvailableBalance float64   `gorm:"column:available_balance;type:decimal(20,2);default:0.00" json:"available_balance"`
	PendingBalance   float64   `gorm:"column:pending_balance;type:decimal(20,2);default:0.00" json:"pending_balance"`
	Level            int       `gorm:"column:level;default:1" json:"level"`
	IsBusiness       bool      `gorm:"column:is_business;default:false" json:"is_business"`
	BusinessName     string    `gorm:"column:business_name;size:255" json:"business_name"`
	BusinessAddress  string    `gorm:"column:business_address;type:text" json:"business_address"`
	TaxID            string    `gorm:"column:tax_id;size:50" json:"tax_id"`
	SmallBusiness    bool      `gorm:"column:small_business;default:false" json:"small_business"` // tax-exempt regime, no VAT itemized
	Status           int       `gorm:"column:status;default:1" json:"status"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
