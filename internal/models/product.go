package models

import (
	"time"
)

type Product struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    int       `gorm:"column:seller_id;not null;index" json:"seller_id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Price       float64   `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Status      int       `gorm:"column:status;default:1" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Module content types. Every deliverable module carries exactly one of
// these tags; consumers must switch on the tag, not probe the columns.
const (
	ModuleContentFile  = "file"
	ModuleContentLink  = "link"
	ModuleContentText  = "text"
	ModuleContentEmbed = "embed"
)

type ProductModule struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int       `gorm:"column:product_id;not null;index" json:"product_id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	ContentType string    `gorm:"column:content_type;size:20;not null" json:"content_type"`
	FilePath    string    `gorm:"column:file_path;size:1024" json:"file_path"`
	ExternalURL string    `gorm:"column:external_url;size:1024" json:"external_url"`
	BodyText    string    `gorm:"column:body_text;type:longtext" json:"body_text"`
	EmbedCode   string    `gorm:"column:embed_code;type:text" json:"embed_code"`
	Position    int       `gorm:"column:position;default:0" json:"position"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProductModule) TableName() string {
	return "product_modules"
}
