package invoices

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/sequence"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type numberGenerator interface {
	Next(ctx context.Context, tx *gorm.DB, scope sequence.Scope) (string, error)
}

// Service exposes invoice operations. ConvertDraft is the only way an invoice
// is created.
type Service interface {
	ConvertDraft(ctx context.Context, input ConvertDraftInput) (*InvoiceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error)
	List(ctx context.Context, params pagination.Params) (*InvoiceListDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*InvoiceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConvertDraftInput identifies the draft to convert. PaymentMode overrides the
// draft's mode when set; otherwise the draft's mode (or cash) applies.
type ConvertDraftInput struct {
	DraftID     uuid.UUID
	PaymentMode *enums.PaymentMode
}

// UpdateStatusInput holds optional invoice mutations after the sale.
type UpdateStatusInput struct {
	Status      *enums.InvoiceStatus
	PaymentMode *enums.PaymentMode
}

type service struct {
	repo Repository
	tx   txRunner
	seq  numberGenerator
}

// NewService builds an invoice service with the required dependencies.
func NewService(repo Repository, tx txRunner, seq numberGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if seq == nil {
		return nil, fmt.Errorf("number generator required")
	}
	return &service{repo: repo, tx: tx, seq: seq}, nil
}

// ConvertDraft turns a draft into an invoice in one transaction: every line is
// repriced from the variant's current price, stock is decremented, the invoice
// and its items are written, and the draft is deleted. Draft-stage prices are
// ignored entirely. If any step fails nothing is committed and the draft
// survives untouched.
func (s *service) ConvertDraft(ctx context.Context, input ConvertDraftInput) (*InvoiceDTO, error) {
	if input.DraftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id required")
	}
	if input.PaymentMode != nil && !input.PaymentMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
	}

	var invoiceID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		draft, err := repo.FindDraft(ctx, input.DraftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found or already converted")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
		}
		if len(draft.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeConversion, "draft has no items")
		}

		number, err := s.seq.Next(ctx, tx, sequence.ScopeInvoice)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		lines := make([]models.InvoiceItem, 0, len(draft.Items))
		for _, draftItem := range draft.Items {
			variant, err := repo.FindVariantForUpdate(ctx, draftItem.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConversion, "draft references a variant that no longer exists").
						WithDetails(map[string]any{"variantId": draftItem.VariantID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
			}

			lineTotal := variant.Price.Mul(decimal.NewFromInt(int64(draftItem.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			lines = append(lines, models.InvoiceItem{
				VariantID: variant.ID,
				Quantity:  draftItem.Quantity,
				UnitPrice: variant.Price,
				Total:     lineTotal,
			})

			// Stock floors at zero; overselling a stale count is recorded as
			// an empty shelf, not a negative one.
			remaining := variant.StockQty - draftItem.Quantity
			if remaining < 0 {
				remaining = 0
			}
			if err := repo.UpdateVariantStock(ctx, variant.ID, remaining); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement variant stock")
			}
		}

		total := subtotal.Sub(draft.Discount).Add(draft.Tax)
		if total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeConversion, "discount exceeds repriced subtotal").
				WithDetails(map[string]any{
					"subtotal": subtotal.StringFixed(2),
					"discount": draft.Discount.StringFixed(2),
				})
		}

		mode := enums.PaymentModeCash
		if draft.PaymentMode != nil {
			mode = *draft.PaymentMode
		}
		if input.PaymentMode != nil {
			mode = *input.PaymentMode
		}

		invoice := &models.Invoice{
			InvoiceNumber: number,
			CustomerID:    draft.CustomerID,
			Subtotal:      subtotal,
			Discount:      draft.Discount,
			Tax:           draft.Tax,
			Total:         total,
			PaymentMode:   mode,
			Status:        enums.InvoiceStatusPending,
		}
		if _, err := repo.CreateInvoice(ctx, invoice); err != nil {
			if db.IsUniqueViolation(err, "idx_invoices_invoice_number") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice number already taken, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		if err := repo.CreateItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice items")
		}

		deleted, err := repo.DeleteDraft(ctx, draft.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume draft")
		}
		if deleted == 0 {
			// A concurrent conversion consumed the draft after our read; this
			// transaction rolls back so only one invoice survives.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "draft already converted")
		}

		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, invoiceID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return toInvoiceDTO(invoice), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*InvoiceListDTO, error) {
	after, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	invoices, err := s.repo.List(ctx, after, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}

	list := &InvoiceListDTO{}
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[len(invoices)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	list.Items = make([]InvoiceDTO, 0, len(invoices))
	for i := range invoices {
		list.Items = append(list.Items, *toInvoiceDTO(&invoices[i]))
	}
	return list, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
		}
		if invoice.Status == enums.InvoiceStatusCancelled && *input.Status != enums.InvoiceStatusCancelled {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled invoice cannot change status")
		}
		invoice.Status = *input.Status
	}
	if input.PaymentMode != nil {
		if !input.PaymentMode.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
		}
		invoice.PaymentMode = *input.PaymentMode
	}

	if _, err := s.repo.UpdateInvoice(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice")
	}
	return toInvoiceDTO(invoice), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete invoice")
	}
	return nil
}
