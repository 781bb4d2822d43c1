package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Service exposes taxonomy CRUD for categories, subcategories and brands.
type Service interface {
	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateSubcategory(ctx context.Context, categoryID uuid.UUID, name string) (*SubcategoryDTO, error)
	ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]SubcategoryDTO, error)
	UpdateSubcategory(ctx context.Context, id uuid.UUID, name string) (*SubcategoryDTO, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	CreateBrand(ctx context.Context, name string) (*BrandDTO, error)
	ListBrands(ctx context.Context) ([]BrandDTO, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*BrandDTO, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

// CategoryDTO is the read model for a category with its subcategories.
type CategoryDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Subcategories []SubcategoryDTO `json:"subcategories"`
}

// SubcategoryDTO is the read model for a subcategory.
type SubcategoryDTO struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
}

// BrandDTO is the read model for a brand.
type BrandDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type service struct {
	repo Repository
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.repo.CreateCategory(ctx, &models.Category{
		Name: name,
		Slug: slugName(name),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return toCategoryDTO(category), nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return toCategoryDTO(category), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, *toCategoryDTO(&categories[i]))
	}
	return dtos, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Name = name
	category.Slug = slugName(name)
	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return toCategoryDTO(updated), nil
}

// DeleteCategory refuses to orphan products; empty categories cascade their
// subcategories away.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	products, err := s.repo.CountCategoryProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if products > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category has products")
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) CreateSubcategory(ctx context.Context, categoryID uuid.UUID, name string) (*SubcategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name required")
	}
	if categoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if _, err := s.repo.FindCategory(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	subcategory, err := s.repo.CreateSubcategory(ctx, &models.Subcategory{
		CategoryID: categoryID,
		Name:       name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subcategory")
	}
	return toSubcategoryDTO(subcategory), nil
}

func (s *service) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]SubcategoryDTO, error) {
	subcategories, err := s.repo.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subcategories")
	}
	dtos := make([]SubcategoryDTO, 0, len(subcategories))
	for i := range subcategories {
		dtos = append(dtos, *toSubcategoryDTO(&subcategories[i]))
	}
	return dtos, nil
}

func (s *service) UpdateSubcategory(ctx context.Context, id uuid.UUID, name string) (*SubcategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name required")
	}

	subcategory, err := s.repo.FindSubcategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subcategory")
	}

	subcategory.Name = name
	updated, err := s.repo.UpdateSubcategory(ctx, subcategory)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subcategory")
	}
	return toSubcategoryDTO(updated), nil
}

func (s *service) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindSubcategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subcategory")
	}
	if err := s.repo.DeleteSubcategory(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subcategory has products")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete subcategory")
	}
	return nil
}

func (s *service) CreateBrand(ctx context.Context, name string) (*BrandDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name required")
	}

	brand, err := s.repo.CreateBrand(ctx, &models.Brand{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create brand")
	}
	return toBrandDTO(brand), nil
}

func (s *service) ListBrands(ctx context.Context) ([]BrandDTO, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	dtos := make([]BrandDTO, 0, len(brands))
	for i := range brands {
		dtos = append(dtos, *toBrandDTO(&brands[i]))
	}
	return dtos, nil
}

func (s *service) UpdateBrand(ctx context.Context, id uuid.UUID, name string) (*BrandDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name required")
	}

	brand, err := s.repo.FindBrand(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}

	brand.Name = name
	updated, err := s.repo.UpdateBrand(ctx, brand)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update brand")
	}
	return toBrandDTO(updated), nil
}

func (s *service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindBrand(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "brand has products")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete brand")
	}
	return nil
}

func toCategoryDTO(category *models.Category) *CategoryDTO {
	dto := &CategoryDTO{
		ID:            category.ID,
		Name:          category.Name,
		Slug:          category.Slug,
		Subcategories: make([]SubcategoryDTO, 0, len(category.Subcategories)),
	}
	for i := range category.Subcategories {
		dto.Subcategories = append(dto.Subcategories, *toSubcategoryDTO(&category.Subcategories[i]))
	}
	return dto
}

func toSubcategoryDTO(subcategory *models.Subcategory) *SubcategoryDTO {
	return &SubcategoryDTO{
		ID:         subcategory.ID,
		CategoryID: subcategory.CategoryID,
		Name:       subcategory.Name,
	}
}

func toBrandDTO(brand *models.Brand) *BrandDTO {
	return &BrandDTO{ID: brand.ID, Name: brand.Name}
}

func slugName(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
