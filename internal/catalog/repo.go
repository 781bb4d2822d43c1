package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository exposes the product taxonomy tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CountCategoryProducts(ctx context.Context, id uuid.UUID) (int64, error)

	CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error)
	FindSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
	ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var list []models.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		Order("name ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

func (r *repository) CountCategoryProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error) {
	if err := r.db.WithContext(ctx).Create(subcategory).Error; err != nil {
		return nil, err
	}
	return subcategory, nil
}

func (r *repository) FindSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	if err := r.db.WithContext(ctx).First(&subcategory, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subcategory, nil
}

func (r *repository) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var list []models.Subcategory
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error) {
	if err := r.db.WithContext(ctx).Save(subcategory).Error; err != nil {
		return nil, err
	}
	return subcategory, nil
}

func (r *repository) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Subcategory{}, "id = ?", id).Error
}

func (r *repository) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

func (r *repository) FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var list []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) UpdateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Save(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

func (r *repository) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Brand{}, "id = ?", id).Error
}
