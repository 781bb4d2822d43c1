package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog listing; sellable units live on its variants.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	CategoryID    uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	SubcategoryID *uuid.UUID       `gorm:"column:subcategory_id;type:uuid"`
	BrandID       *uuid.UUID       `gorm:"column:brand_id;type:uuid"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	Subcategory   *Subcategory     `gorm:"foreignKey:SubcategoryID"`
	Brand         *Brand           `gorm:"foreignKey:BrandID"`
	Variants      []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
