package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// ProductDTO is the read model returned to controllers, with taxonomy names
// flattened from the joined rows.
type ProductDTO struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Description     *string      `json:"description,omitempty"`
	CategoryID      uuid.UUID    `json:"categoryId"`
	CategoryName    *string      `json:"categoryName,omitempty"`
	SubcategoryID   *uuid.UUID   `json:"subcategoryId,omitempty"`
	SubcategoryName *string      `json:"subcategoryName,omitempty"`
	BrandID         *uuid.UUID   `json:"brandId,omitempty"`
	BrandName       *string      `json:"brandName,omitempty"`
	IsActive        bool         `json:"isActive"`
	Variants        []VariantDTO `json:"variants"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// VariantDTO is the read model for one sellable unit.
type VariantDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	StockQty  int             `json:"stockQty"`
	Price     decimal.Decimal `json:"price"`
	Slug      string          `json:"slug"`
	Barcode   string          `json:"barcode"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		CategoryID:    product.CategoryID,
		SubcategoryID: product.SubcategoryID,
		BrandID:       product.BrandID,
		IsActive:      product.IsActive,
		Variants:      make([]VariantDTO, 0, len(product.Variants)),
		CreatedAt:     product.CreatedAt,
	}
	if product.Category != nil {
		dto.CategoryName = &product.Category.Name
	}
	if product.Subcategory != nil {
		dto.SubcategoryName = &product.Subcategory.Name
	}
	if product.Brand != nil {
		dto.BrandName = &product.Brand.Name
	}
	for i := range product.Variants {
		dto.Variants = append(dto.Variants, *toVariantDTO(&product.Variants[i]))
	}
	return dto
}

func toVariantDTO(variant *models.ProductVariant) *VariantDTO {
	return &VariantDTO{
		ID:        variant.ID,
		ProductID: variant.ProductID,
		Size:      variant.Size,
		Color:     variant.Color,
		StockQty:  variant.StockQty,
		Price:     variant.Price,
		Slug:      variant.Slug,
		Barcode:   variant.Barcode,
	}
}
