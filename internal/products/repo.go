package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	ActiveOnly bool
}

// Repository exposes product and variant persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)
	UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
	// CountVariantReferences reports how many draft and invoice lines point at
	// the variant; referenced variants must not be deleted.
	CountVariantReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Subcategory").
		Preload("Brand").
		Preload("Variants").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Subcategory").
		Preload("Brand").
		Preload("Variants").
		Order("created_at DESC")

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var list []models.Product
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) ListVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *repository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

func (r *repository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductVariant{}, "id = ?", id).Error
}

func (r *repository) CountVariantReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var draftRefs int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceDraftItem{}).
		Where("variant_id = ?", id).
		Count(&draftRefs).Error
	if err != nil {
		return 0, err
	}

	var invoiceRefs int64
	err = r.db.WithContext(ctx).
		Model(&models.InvoiceItem{}).
		Where("variant_id = ?", id).
		Count(&invoiceRefs).Error
	if err != nil {
		return 0, err
	}

	return draftRefs + invoiceRefs, nil
}
