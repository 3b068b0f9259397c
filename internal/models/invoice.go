package models

import (
	"time"
)

// Invoice is immutable once issued. At most one invoice exists per ledger
// transaction (unique index); corrections require a new instrument. The
// seller's business identity is snapshotted at issue time.
type Invoice struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Number         int       `gorm:"column:number;not null" json:"number"`
	InvoiceNo      string    `gorm:"column:invoice_no;size:50;not null;uniqueIndex" json:"invoice_no"`
	TransactionID  int       `gorm:"column:transaction_id;not null;uniqueIndex" json:"transaction_id"`
	SellerID       int       `gorm:"column:seller_id;not null;index" json:"seller_id"`
	AccessToken    string    `gorm:"column:access_token;size:128;not null;uniqueIndex" json:"-"`
	TokenExpiresAt time.Time `gorm:"column:token_expires_at;not null" json:"token_expires_at"`
	GrossAmount    float64   `gorm:"column:gross_amount;type:decimal(20,2);not null" json:"gross_amount"`
	NetAmount      float64   `gorm:"column:net_amount;type:decimal(20,2);not null" json:"net_amount"`
	TaxAmount      float64   `gorm:"column:tax_amount;type:decimal(20,2);not null" json:"tax_amount"`
	TaxRate        float64   `gorm:"column:tax_rate;type:decimal(5,4);default:0.0000" json:"tax_rate"`
	SellerName     string    `gorm:"column:seller_name;size:255" json:"seller_name"`
	SellerAddress  string    `gorm:"column:seller_address;type:text" json:"seller_address"`
	SellerTaxID    string    `gorm:"column:seller_tax_id;size:50" json:"seller_tax_id"`
	SmallBusiness  bool      `gorm:"column:small_business;default:false" json:"small_business"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceCounter backs strictly increasing invoice numbers. A single row is
// incremented under a row lock; never read-modify-written outside that lock.
type InvoiceCounter struct {
	ID         int `gorm:"primaryKey" json:"id"`
	LastNumber int `gorm:"column:last_number;default:0" json:"last_number"`
}

func (InvoiceCounter) TableName() string {
	return "invoice_counters"
}
