package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// InvoiceDraft is a mutable, non-authoritative staging record. It may be
// edited or deleted freely and carries no stock-affecting side effects.
type InvoiceDraft struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DraftNumber string             `gorm:"column:draft_number;not null;uniqueIndex:idx_invoice_drafts_draft_number"`
	CustomerID  *uuid.UUID         `gorm:"column:customer_id;type:uuid"`
	Subtotal    decimal.Decimal    `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount    decimal.Decimal    `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Tax         decimal.Decimal    `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Total       decimal.Decimal    `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMode *enums.PaymentMode `gorm:"column:payment_mode;type:text"`
	Status      enums.DraftStatus  `gorm:"column:status;type:text;not null;default:'draft'"`
	Customer    *Customer          `gorm:"foreignKey:CustomerID"`
	Items       []InvoiceDraftItem `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// InvoiceDraftItem is a draft line. Total always equals Quantity × UnitPrice
// at rest; it is recomputed on every quantity edit.
type InvoiceDraftItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DraftID   uuid.UUID       `gorm:"column:draft_id;type:uuid;not null"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
