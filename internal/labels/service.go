package labels

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

const maxCopiesPerVariant = 500

// BatchRequestItem asks for label copies of one variant.
type BatchRequestItem struct {
	VariantID uuid.UUID `json:"variantId" validate:"required"`
	Copies    int       `json:"copies" validate:"required,min=1"`
}

// Label is one printable barcode label. Rendering to an image or printer
// format is the client's job; the service only resolves the data.
type Label struct {
	VariantID   uuid.UUID       `json:"variantId"`
	Barcode     string          `json:"barcode"`
	ProductName string          `json:"productName"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Price       decimal.Decimal `json:"price"`
	Copies      int             `json:"copies"`
}

// Batch is the resolved label batch.
type Batch struct {
	Labels      []Label `json:"labels"`
	TotalCopies int     `json:"totalCopies"`
}

// VariantLookup is the slice of the products repository the label service needs.
type VariantLookup interface {
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

// Service resolves barcode label batches against the live catalog.
type Service interface {
	BuildBatch(ctx context.Context, items []BatchRequestItem) (*Batch, error)
}

type service struct {
	variants VariantLookup
}

// NewService builds a label service.
func NewService(variants VariantLookup) (Service, error) {
	if variants == nil {
		return nil, fmt.Errorf("variant lookup required")
	}
	return &service{variants: variants}, nil
}

func (s *service) BuildBatch(ctx context.Context, items []BatchRequestItem) (*Batch, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label batch cannot be empty")
	}

	batch := &Batch{Labels: make([]Label, 0, len(items))}
	for i, item := range items {
		if item.Copies < 1 || item.Copies > maxCopiesPerVariant {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "label copies out of range").
				WithDetails(map[string]any{"index": i, "max": maxCopiesPerVariant})
		}

		variant, err := s.variants.FindVariant(ctx, item.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").
					WithDetails(map[string]any{"variantId": item.VariantID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}

		label := Label{
			VariantID: variant.ID,
			Barcode:   variant.Barcode,
			Size:      variant.Size,
			Color:     variant.Color,
			Price:     variant.Price,
			Copies:    item.Copies,
		}
		if variant.Product != nil {
			label.ProductName = variant.Product.Name
		}
		batch.Labels = append(batch.Labels, label)
		batch.TotalCopies += item.Copies
	}
	return batch, nil
}
