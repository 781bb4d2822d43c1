package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type fakeRepo struct {
	categories    map[uuid.UUID]*models.Category
	subcategories map[uuid.UUID]*models.Subcategory
	brands        map[uuid.UUID]*models.Brand
	productCounts map[uuid.UUID]int64

	failDeleteSubcategory error
	failDeleteBrand       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories:    make(map[uuid.UUID]*models.Category),
		subcategories: make(map[uuid.UUID]*models.Subcategory),
		brands:        make(map[uuid.UUID]*models.Brand),
		productCounts: make(map[uuid.UUID]int64),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	for _, existing := range f.categories {
		if existing.Name == category.Name {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_categories_name"}
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	copied := *category
	f.categories[category.ID] = &copied
	return category, nil
}

func (f *fakeRepo) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *category
	copied.Subcategories = nil
	for _, sub := range f.subcategories {
		if sub.CategoryID == id {
			copied.Subcategories = append(copied.Subcategories, *sub)
		}
	}
	return &copied, nil
}

func (f *fakeRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(f.categories))
	for id := range f.categories {
		category, _ := f.FindCategory(ctx, id)
		out = append(out, *category)
	}
	return out, nil
}

func (f *fakeRepo) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if _, ok := f.categories[category.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *category
	f.categories[category.ID] = &copied
	return category, nil
}

func (f *fakeRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	for subID, sub := range f.subcategories {
		if sub.CategoryID == id {
			delete(f.subcategories, subID)
		}
	}
	return nil
}

func (f *fakeRepo) CountCategoryProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	return f.productCounts[id], nil
}

func (f *fakeRepo) CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error) {
	if subcategory.ID == uuid.Nil {
		subcategory.ID = uuid.New()
	}
	copied := *subcategory
	f.subcategories[subcategory.ID] = &copied
	return subcategory, nil
}

func (f *fakeRepo) FindSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	subcategory, ok := f.subcategories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *subcategory
	return &copied, nil
}

func (f *fakeRepo) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	out := make([]models.Subcategory, 0, len(f.subcategories))
	for _, sub := range f.subcategories {
		if categoryID != nil && sub.CategoryID != *categoryID {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

func (f *fakeRepo) UpdateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error) {
	if _, ok := f.subcategories[subcategory.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *subcategory
	f.subcategories[subcategory.ID] = &copied
	return subcategory, nil
}

func (f *fakeRepo) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	if f.failDeleteSubcategory != nil {
		return f.failDeleteSubcategory
	}
	delete(f.subcategories, id)
	return nil
}

func (f *fakeRepo) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	for _, existing := range f.brands {
		if existing.Name == brand.Name {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_brands_name"}
		}
	}
	if brand.ID == uuid.Nil {
		brand.ID = uuid.New()
	}
	copied := *brand
	f.brands[brand.ID] = &copied
	return brand, nil
}

func (f *fakeRepo) FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	brand, ok := f.brands[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *brand
	return &copied, nil
}

func (f *fakeRepo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	out := make([]models.Brand, 0, len(f.brands))
	for _, brand := range f.brands {
		out = append(out, *brand)
	}
	return out, nil
}

func (f *fakeRepo) UpdateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if _, ok := f.brands[brand.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *brand
	f.brands[brand.ID] = &copied
	return brand, nil
}

func (f *fakeRepo) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if f.failDeleteBrand != nil {
		return f.failDeleteBrand
	}
	delete(f.brands, id)
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestSlugName(t *testing.T) {
	cases := map[string]string{
		"Winter Jackets":     "winter-jackets",
		"  Kids'  Shoes  ":   "kids-shoes",
		"T-Shirts & Tops":    "t-shirts-tops",
		"2024 Collection":    "2024-collection",
		"ÉTÉ":                "été",
		"---":                "",
	}
	for input, want := range cases {
		assert.Equal(t, want, slugName(input), "input %q", input)
	}
}

func TestCreateCategorySlugsName(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	category, err := svc.CreateCategory(context.Background(), "Winter Jackets")
	require.NoError(t, err)
	assert.Equal(t, "Winter Jackets", category.Name)
	assert.Equal(t, "winter-jackets", category.Slug)
}

func TestCreateCategoryDuplicateConflicts(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.CreateCategory(context.Background(), "Shoes")
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), "Shoes")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestDeleteCategoryBlockedByProducts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	category, err := svc.CreateCategory(context.Background(), "Shoes")
	require.NoError(t, err)
	repo.productCounts[category.ID] = 3

	err = svc.DeleteCategory(context.Background(), category.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestDeleteEmptyCategoryCascadesSubcategories(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	category, err := svc.CreateCategory(context.Background(), "Shoes")
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(context.Background(), category.ID, "Sneakers")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(context.Background(), category.ID))
	assert.Empty(t, repo.categories)
	assert.Empty(t, repo.subcategories)
}

func TestCreateSubcategoryRequiresCategory(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.CreateSubcategory(context.Background(), uuid.New(), "Sneakers")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListSubcategoriesFiltersByCategory(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	shoes, err := svc.CreateCategory(context.Background(), "Shoes")
	require.NoError(t, err)
	tops, err := svc.CreateCategory(context.Background(), "Tops")
	require.NoError(t, err)

	_, err = svc.CreateSubcategory(context.Background(), shoes.ID, "Sneakers")
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(context.Background(), tops.ID, "T-Shirts")
	require.NoError(t, err)

	all, err := svc.ListSubcategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListSubcategories(context.Background(), &shoes.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sneakers", filtered[0].Name)
}

func TestDeleteSubcategoryWithProductsConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	category, err := svc.CreateCategory(context.Background(), "Shoes")
	require.NoError(t, err)
	sub, err := svc.CreateSubcategory(context.Background(), category.ID, "Sneakers")
	require.NoError(t, err)

	repo.failDeleteSubcategory = &pgconn.PgError{Code: "23503"}

	err = svc.DeleteSubcategory(context.Background(), sub.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestBrandLifecycle(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	brand, err := svc.CreateBrand(context.Background(), "Nordwand")
	require.NoError(t, err)

	_, err = svc.CreateBrand(context.Background(), "Nordwand")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	renamed, err := svc.UpdateBrand(context.Background(), brand.ID, "Nordwand Apparel")
	require.NoError(t, err)
	assert.Equal(t, "Nordwand Apparel", renamed.Name)

	require.NoError(t, svc.DeleteBrand(context.Background(), brand.ID))
	assert.Empty(t, repo.brands)
}

func TestDeleteBrandWithProductsConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	brand, err := svc.CreateBrand(context.Background(), "Nordwand")
	require.NoError(t, err)
	repo.failDeleteBrand = &pgconn.PgError{Code: "23503"}

	err = svc.DeleteBrand(context.Background(), brand.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
