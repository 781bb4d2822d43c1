package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the sellable unit of a product. Price is the single
// source of truth for line totals; client-supplied prices are never trusted.
type ProductVariant struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Size      string          `gorm:"column:size;not null"`
	Color     string          `gorm:"column:color;not null"`
	StockQty  int             `gorm:"column:stock_qty;not null;default:0"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Slug      string          `gorm:"column:slug;not null;uniqueIndex"`
	Barcode   string          `gorm:"column:barcode;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
