package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type fakeRepo struct {
	products map[uuid.UUID]*models.Product
	variants map[uuid.UUID]*models.ProductVariant
	refs     map[uuid.UUID]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[uuid.UUID]*models.Product),
		variants: make(map[uuid.UUID]*models.ProductVariant),
		refs:     make(map[uuid.UUID]int64),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	f.products[product.ID] = &copied
	return product, nil
}

func (f *fakeRepo) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	copied.Variants = nil
	for _, variant := range f.variants {
		if variant.ProductID == id {
			copied.Variants = append(copied.Variants, *variant)
		}
	}
	return &copied, nil
}

func (f *fakeRepo) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	out := make([]models.Product, 0, len(f.products))
	for id, product := range f.products {
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.ActiveOnly && !product.IsActive {
			continue
		}
		loaded, _ := f.FindProduct(ctx, id)
		out = append(out, *loaded)
	}
	return out, nil
}

func (f *fakeRepo) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if _, ok := f.products[product.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	f.products[product.ID] = &copied
	return product, nil
}

func (f *fakeRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	delete(f.products, id)
	for variantID, variant := range f.variants {
		if variant.ProductID == id {
			delete(f.variants, variantID)
		}
	}
	return nil
}

func (f *fakeRepo) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	for _, existing := range f.variants {
		if existing.Slug == variant.Slug {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_product_variants_slug"}
		}
	}
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	copied := *variant
	f.variants[variant.ID] = &copied
	return variant, nil
}

func (f *fakeRepo) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	variant, ok := f.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *variant
	if product, ok := f.products[variant.ProductID]; ok {
		productCopy := *product
		copied.Product = &productCopy
	}
	return &copied, nil
}

func (f *fakeRepo) ListVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	out := make([]models.ProductVariant, 0)
	for _, variant := range f.variants {
		if variant.ProductID == productID {
			out = append(out, *variant)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if _, ok := f.variants[variant.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *variant
	copied.Product = nil
	f.variants[variant.ID] = &copied
	return variant, nil
}

func (f *fakeRepo) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	delete(f.variants, id)
	return nil
}

func (f *fakeRepo) CountVariantReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	return f.refs[id], nil
}

// fakeTx snapshots the repo before the closure and restores it on error, the
// same visible behavior a rolled-back transaction has.
type fakeTx struct {
	repo *fakeRepo
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	products := make(map[uuid.UUID]*models.Product, len(f.repo.products))
	for id, product := range f.repo.products {
		copied := *product
		products[id] = &copied
	}
	variants := make(map[uuid.UUID]*models.ProductVariant, len(f.repo.variants))
	for id, variant := range f.repo.variants {
		copied := *variant
		variants[id] = &copied
	}

	if err := fn(nil); err != nil {
		f.repo.products = products
		f.repo.variants = variants
		return err
	}
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo) Service {
	t.Helper()
	svc, err := NewService(repo, &fakeTx{repo: repo})
	require.NoError(t, err)
	return svc
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateProductGeneratesSlugAndBarcode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants: []CreateVariantSpec{
			{Size: "42", Color: "Blue", StockQty: 10, Price: price("89.90")},
		},
	})
	require.NoError(t, err)
	require.Len(t, product.Variants, 1)

	variant := product.Variants[0]
	assert.Equal(t, "trail-runner-42-blue", variant.Slug)
	assert.Len(t, variant.Barcode, 12)
	assert.True(t, product.IsActive)
}

func TestCreateProductDuplicateSlugRollsBack(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", Price: price("89.90")}},
	})
	require.NoError(t, err)

	before := len(repo.products)
	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", Price: price("99.90")}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// The second product header must not survive the failed variant insert.
	assert.Len(t, repo.products, before)
	assert.Len(t, repo.variants, 1)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Price: price("-1")}},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDeleteProductBlockedByReferencedVariant(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", Price: price("89.90")}},
	})
	require.NoError(t, err)
	repo.refs[product.Variants[0].ID] = 1

	err = svc.DeleteProduct(context.Background(), product.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	assert.Len(t, repo.products, 1)
}

func TestDeleteUnreferencedProductCascades(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", Price: price("89.90")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	assert.Empty(t, repo.products)
	assert.Empty(t, repo.variants)
}

func TestCreateVariantForMissingProduct(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.CreateVariant(context.Background(), CreateVariantInput{
		ProductID: uuid.New(),
		Size:      "42",
		Price:     price("89.90"),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateVariantReslugsOnSizeChange(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", Price: price("89.90")}},
	})
	require.NoError(t, err)

	size := "43"
	updated, err := svc.UpdateVariant(context.Background(), product.Variants[0].ID, UpdateVariantInput{Size: &size})
	require.NoError(t, err)
	assert.Equal(t, "trail-runner-43-blue", updated.Slug)
}

func TestUpdateVariantStockOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", StockQty: 5, Price: price("89.90")}},
	})
	require.NoError(t, err)

	stock := 12
	updated, err := svc.UpdateVariant(context.Background(), product.Variants[0].ID, UpdateVariantInput{StockQty: &stock})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.StockQty)
	// Slug is untouched when size and color stay the same.
	assert.Equal(t, "trail-runner-42-blue", updated.Slug)
}

func TestDeleteVariantBlockedByReferences(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Trail Runner",
		CategoryID: uuid.New(),
		Variants:   []CreateVariantSpec{{Size: "42", Color: "Blue", Price: price("89.90")}},
	})
	require.NoError(t, err)
	repo.refs[product.Variants[0].ID] = 4

	err = svc.DeleteVariant(context.Background(), product.Variants[0].ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestListProductsActiveOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	categoryID := uuid.New()
	active, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Active", CategoryID: categoryID})
	require.NoError(t, err)

	retired, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Retired", CategoryID: categoryID})
	require.NoError(t, err)
	inactive := false
	_, err = svc.UpdateProduct(context.Background(), retired.ID, UpdateProductInput{IsActive: &inactive})
	require.NoError(t, err)

	list, err := svc.ListProducts(context.Background(), ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
}
