package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog product and variant operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateVariant(ctx context.Context, input CreateVariantInput) (*VariantDTO, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*VariantDTO, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, input UpdateVariantInput) (*VariantDTO, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds a validated product payload with optional initial variants.
type CreateProductInput struct {
	Name          string
	Description   *string
	CategoryID    uuid.UUID
	SubcategoryID *uuid.UUID
	BrandID       *uuid.UUID
	Variants      []CreateVariantSpec
}

// CreateVariantSpec describes one variant created alongside its product.
type CreateVariantSpec struct {
	Size     string
	Color    string
	StockQty int
	Price    decimal.Decimal
}

// CreateVariantInput adds a variant to an existing product.
type CreateVariantInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	StockQty  int
	Price     decimal.Decimal
}

// UpdateProductInput holds optional product mutations.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	BrandID       *uuid.UUID
	IsActive      *bool
}

// UpdateVariantInput holds optional variant mutations.
type UpdateVariantInput struct {
	Size     *string
	Color    *string
	StockQty *int
	Price    *decimal.Decimal
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a product service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	for i, spec := range input.Variants {
		if spec.StockQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative").
				WithDetails(map[string]any{"index": i})
		}
		if spec.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative").
				WithDetails(map[string]any{"index": i})
		}
	}

	var productID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product := &models.Product{
			Name:          name,
			Description:   input.Description,
			CategoryID:    input.CategoryID,
			SubcategoryID: input.SubcategoryID,
			BrandID:       input.BrandID,
			IsActive:      true,
		}
		if _, err := repo.CreateProduct(ctx, product); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category, subcategory or brand")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}

		for _, spec := range input.Variants {
			variant := &models.ProductVariant{
				ProductID: product.ID,
				Size:      strings.TrimSpace(spec.Size),
				Color:     strings.TrimSpace(spec.Color),
				StockQty:  spec.StockQty,
				Price:     spec.Price,
				Slug:      slugify(name, spec.Size, spec.Color),
				Barcode:   newBarcode(),
			}
			if _, err := repo.CreateVariant(ctx, variant); err != nil {
				if db.IsUniqueViolation(err, "idx_product_variants_slug") {
					return pkgerrors.New(pkgerrors.CodeConflict, "variant with the same size and color already exists").
						WithDetails(map[string]any{"slug": variant.Slug})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
			}
		}

		productID = product.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, productID)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]ProductDTO, error) {
	list, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *toProductDTO(&list[i]))
	}
	return dtos, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.SubcategoryID != nil {
		product.SubcategoryID = input.SubcategoryID
	}
	if input.BrandID != nil {
		product.BrandID = input.BrandID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown category, subcategory or brand")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product and its variants. Products whose variants
// appear on drafts or invoices are kept and must be deactivated instead.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	for i := range product.Variants {
		refs, err := s.repo.CountVariantReferences(ctx, product.Variants[i].ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count variant references")
		}
		if refs > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product variants are referenced by drafts or invoices")
		}
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) CreateVariant(ctx context.Context, input CreateVariantInput) (*VariantDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.StockQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	variant := &models.ProductVariant{
		ProductID: product.ID,
		Size:      strings.TrimSpace(input.Size),
		Color:     strings.TrimSpace(input.Color),
		StockQty:  input.StockQty,
		Price:     input.Price,
		Slug:      slugify(product.Name, input.Size, input.Color),
		Barcode:   newBarcode(),
	}
	if _, err := s.repo.CreateVariant(ctx, variant); err != nil {
		if db.IsUniqueViolation(err, "idx_product_variants_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant with the same size and color already exists").
				WithDetails(map[string]any{"slug": variant.Slug})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}
	return toVariantDTO(variant), nil
}

func (s *service) GetVariant(ctx context.Context, id uuid.UUID) (*VariantDTO, error) {
	variant, err := s.repo.FindVariant(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return toVariantDTO(variant), nil
}

func (s *service) UpdateVariant(ctx context.Context, id uuid.UUID, input UpdateVariantInput) (*VariantDTO, error) {
	variant, err := s.repo.FindVariant(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	if input.Size != nil {
		variant.Size = strings.TrimSpace(*input.Size)
	}
	if input.Color != nil {
		variant.Color = strings.TrimSpace(*input.Color)
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock cannot be negative")
		}
		variant.StockQty = *input.StockQty
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
		}
		variant.Price = *input.Price
	}

	if (input.Size != nil || input.Color != nil) && variant.Product != nil {
		variant.Slug = slugify(variant.Product.Name, variant.Size, variant.Color)
	}

	if _, err := s.repo.UpdateVariant(ctx, variant); err != nil {
		if db.IsUniqueViolation(err, "idx_product_variants_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "variant with the same size and color already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}
	return toVariantDTO(variant), nil
}

func (s *service) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindVariant(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	refs, err := s.repo.CountVariantReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count variant references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "variant is referenced by drafts or invoices")
	}

	if err := s.repo.DeleteVariant(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	return nil
}
