package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Invoice is the authoritative financial record of a completed transaction.
// Once created it is only ever read, paid-status-updated, or deleted.
type Invoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex:idx_invoices_invoice_number"`
	CustomerID    *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Tax           decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMode   enums.PaymentMode   `gorm:"column:payment_mode;type:text;not null;default:'cash'"`
	Status        enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Customer      *Customer           `gorm:"foreignKey:CustomerID"`
	Items         []InvoiceItem       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// InvoiceItem snapshots a sold line at the variant price current at sale time.
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
