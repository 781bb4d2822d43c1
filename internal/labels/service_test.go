package labels

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type fakeVariants struct {
	variants map[uuid.UUID]*models.ProductVariant
}

func (f *fakeVariants) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	variant, ok := f.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *variant
	return &copied, nil
}

func seedVariant(f *fakeVariants, name, size, color, barcode, price string) uuid.UUID {
	id := uuid.New()
	f.variants[id] = &models.ProductVariant{
		ID:      id,
		Size:    size,
		Color:   color,
		Barcode: barcode,
		Price:   decimal.RequireFromString(price),
		Product: &models.Product{Name: name},
	}
	return id
}

func newTestService(t *testing.T, lookup VariantLookup) Service {
	t.Helper()
	svc, err := NewService(lookup)
	require.NoError(t, err)
	return svc
}

func TestBuildBatchResolvesVariantData(t *testing.T) {
	lookup := &fakeVariants{variants: map[uuid.UUID]*models.ProductVariant{}}
	runnerID := seedVariant(lookup, "Trail Runner", "42", "Blue", "120034005600", "89.90")
	hoodieID := seedVariant(lookup, "Kids Hoodie", "M", "Red", "990011223344", "34.50")
	svc := newTestService(t, lookup)

	batch, err := svc.BuildBatch(context.Background(), []BatchRequestItem{
		{VariantID: runnerID, Copies: 3},
		{VariantID: hoodieID, Copies: 2},
	})
	require.NoError(t, err)
	require.Len(t, batch.Labels, 2)
	assert.Equal(t, 5, batch.TotalCopies)

	first := batch.Labels[0]
	assert.Equal(t, "Trail Runner", first.ProductName)
	assert.Equal(t, "120034005600", first.Barcode)
	assert.Equal(t, "42", first.Size)
	assert.Equal(t, 3, first.Copies)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("89.90")))
}

func TestBuildBatchEmptyRequest(t *testing.T) {
	svc := newTestService(t, &fakeVariants{variants: map[uuid.UUID]*models.ProductVariant{}})

	_, err := svc.BuildBatch(context.Background(), nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestBuildBatchCopiesOutOfRange(t *testing.T) {
	lookup := &fakeVariants{variants: map[uuid.UUID]*models.ProductVariant{}}
	id := seedVariant(lookup, "Trail Runner", "42", "Blue", "120034005600", "89.90")
	svc := newTestService(t, lookup)

	for _, copies := range []int{0, -1, maxCopiesPerVariant + 1} {
		_, err := svc.BuildBatch(context.Background(), []BatchRequestItem{{VariantID: id, Copies: copies}})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "copies %d", copies)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestBuildBatchUnknownVariant(t *testing.T) {
	svc := newTestService(t, &fakeVariants{variants: map[uuid.UUID]*models.ProductVariant{}})

	missing := uuid.New()
	_, err := svc.BuildBatch(context.Background(), []BatchRequestItem{{VariantID: missing, Copies: 1}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
