package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the top level of the product taxonomy.
type Category struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string        `gorm:"column:name;not null;uniqueIndex"`
	Slug          string        `gorm:"column:slug;not null;uniqueIndex"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// Subcategory refines a category.
type Subcategory struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Brand identifies the product manufacturer.
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
