package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// SalesRow is one day of invoice activity.
type SalesRow struct {
	Day          time.Time       `gorm:"column:day" json:"day"`
	InvoiceCount int64           `gorm:"column:invoice_count" json:"invoiceCount"`
	Subtotal     decimal.Decimal `gorm:"column:subtotal" json:"subtotal"`
	Discount     decimal.Decimal `gorm:"column:discount" json:"discount"`
	Tax          decimal.Decimal `gorm:"column:tax" json:"tax"`
	Revenue      decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

// InventoryRow is the stock position of one variant with its taxonomy joined in.
type InventoryRow struct {
	VariantID    string          `gorm:"column:variant_id" json:"variantId"`
	ProductName  string          `gorm:"column:product_name" json:"productName"`
	CategoryName string          `gorm:"column:category_name" json:"categoryName"`
	BrandName    *string         `gorm:"column:brand_name" json:"brandName,omitempty"`
	Size         string          `gorm:"column:size" json:"size"`
	Color        string          `gorm:"column:color" json:"color"`
	StockQty     int             `gorm:"column:stock_qty" json:"stockQty"`
	Price        decimal.Decimal `gorm:"column:price" json:"price"`
	StockValue   decimal.Decimal `gorm:"column:stock_value" json:"stockValue"`
}

// Repository runs the report rollup queries.
type Repository interface {
	SalesByDay(ctx context.Context, from, to time.Time) ([]SalesRow, error)
	InventoryPositions(ctx context.Context) ([]InventoryRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SalesByDay(ctx context.Context, from, to time.Time) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select(
			"date_trunc('day', created_at) AS day",
			"COUNT(*) AS invoice_count",
			"COALESCE(SUM(subtotal), 0) AS subtotal",
			"COALESCE(SUM(discount), 0) AS discount",
			"COALESCE(SUM(tax), 0) AS tax",
			"COALESCE(SUM(total), 0) AS revenue",
		).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status <> ?", "cancelled").
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) InventoryPositions(ctx context.Context) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Select(
			"product_variants.id AS variant_id",
			"products.name AS product_name",
			"categories.name AS category_name",
			"brands.name AS brand_name",
			"product_variants.size AS size",
			"product_variants.color AS color",
			"product_variants.stock_qty AS stock_qty",
			"product_variants.price AS price",
			"product_variants.price * product_variants.stock_qty AS stock_value",
		).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN brands ON brands.id = products.brand_id").
		Order("products.name ASC, product_variants.size ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
