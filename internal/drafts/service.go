package drafts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/sequence"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type numberGenerator interface {
	Next(ctx context.Context, tx *gorm.DB, scope sequence.Scope) (string, error)
}

// CustomerUpserter finds or creates a customer by phone inside the caller's
// transaction.
type CustomerUpserter interface {
	FindOrCreateByPhone(ctx context.Context, tx *gorm.DB, name, phone string) (*models.Customer, error)
}

// Service owns the invoice draft lifecycle: create, edit, discard. Conversion
// to an invoice lives in the invoices package.
type Service interface {
	Create(ctx context.Context, input CreateDraftInput) (*DraftDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DraftDTO, error)
	List(ctx context.Context) ([]DraftDTO, error)
	UpdateHeader(ctx context.Context, id uuid.UUID, input UpdateDraftInput) (*DraftDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int) (*DraftItemDTO, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

// CreateDraftInput holds the validated payload to create a draft.
type CreateDraftInput struct {
	CustomerName  string
	CustomerPhone string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMode   *enums.PaymentMode
	Items         []DraftItemInput
}

// DraftItemInput is one requested draft line. Total is client-supplied and
// trusted at draft stage; the unit price is derived as total / quantity.
// Conversion recomputes everything from live variant prices.
type DraftItemInput struct {
	VariantID uuid.UUID
	Quantity  int
	Total     decimal.Decimal
}

// UpdateDraftInput holds optional header mutations.
type UpdateDraftInput struct {
	Subtotal    *decimal.Decimal
	Discount    *decimal.Decimal
	Tax         *decimal.Decimal
	Total       *decimal.Decimal
	PaymentMode *enums.PaymentMode
}

type service struct {
	repo      Repository
	tx        txRunner
	seq       numberGenerator
	customers CustomerUpserter
}

// NewService builds a draft service with the required dependencies.
func NewService(repo Repository, tx txRunner, seq numberGenerator, customers CustomerUpserter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("drafts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if seq == nil {
		return nil, fmt.Errorf("number generator required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer upserter required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		seq:       seq,
		customers: customers,
	}, nil
}

// Create persists the customer upsert, draft header and items in one
// all-or-nothing transaction. A draft is never left half-written and never
// created without a draft number.
func (s *service) Create(ctx context.Context, input CreateDraftInput) (*DraftDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var draftID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var customerID *uuid.UUID
		if strings.TrimSpace(input.CustomerName) != "" && strings.TrimSpace(input.CustomerPhone) != "" {
			customer, err := s.customers.FindOrCreateByPhone(ctx, tx, input.CustomerName, input.CustomerPhone)
			if err != nil {
				return err
			}
			customerID = &customer.ID
		}

		number, err := s.seq.Next(ctx, tx, sequence.ScopeDraft)
		if err != nil {
			return err
		}

		draft := &models.InvoiceDraft{
			DraftNumber: number,
			CustomerID:  customerID,
			Subtotal:    input.Subtotal,
			Discount:    input.Discount,
			Tax:         input.Tax,
			Total:       input.Total,
			PaymentMode: input.PaymentMode,
			Status:      enums.DraftStatusDraft,
		}
		if _, err := repo.CreateDraft(ctx, draft); err != nil {
			if db.IsUniqueViolation(err, "idx_invoice_drafts_draft_number") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "draft number already taken, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft header")
		}

		items := make([]models.InvoiceDraftItem, 0, len(input.Items))
		for _, in := range input.Items {
			unitPrice := in.Total.Div(decimal.NewFromInt(int64(in.Quantity))).Round(2)
			items = append(items, models.InvoiceDraftItem{
				DraftID:   draft.ID,
				VariantID: in.VariantID,
				Quantity:  in.Quantity,
				UnitPrice: unitPrice,
				Total:     in.Total,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "draft item references unknown variant")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft items")
		}

		draftID = draft.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, draftID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DraftDTO, error) {
	draft, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	return toDraftDTO(draft), nil
}

func (s *service) List(ctx context.Context) ([]DraftDTO, error) {
	draftList, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drafts")
	}
	dtos := make([]DraftDTO, 0, len(draftList))
	for i := range draftList {
		dtos = append(dtos, *toDraftDTO(&draftList[i]))
	}
	return dtos, nil
}

func (s *service) UpdateHeader(ctx context.Context, id uuid.UUID, input UpdateDraftInput) (*DraftDTO, error) {
	draft, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}

	if input.Subtotal != nil {
		draft.Subtotal = *input.Subtotal
	}
	if input.Discount != nil {
		draft.Discount = *input.Discount
	}
	if input.Tax != nil {
		draft.Tax = *input.Tax
	}
	if input.Total != nil {
		draft.Total = *input.Total
	}
	if input.PaymentMode != nil {
		if !input.PaymentMode.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
		}
		draft.PaymentMode = input.PaymentMode
	}

	if _, err := s.repo.UpdateDraft(ctx, draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update draft")
	}
	return toDraftDTO(draft), nil
}

// Delete discards a draft: a hard delete with no side effects beyond the
// cascade to its items.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	if err := s.repo.DeleteDraft(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete draft")
	}
	return nil
}

// UpdateItem changes a line's quantity and recomputes its total from the
// stored unit price. The unit price itself never changes after creation.
func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int) (*DraftItemDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft item")
	}

	item.Quantity = quantity
	item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	if _, err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update draft item")
	}
	return toDraftItemDTO(item), nil
}

func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.repo.FindItem(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "draft item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft item")
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete draft item")
	}
	return nil
}

func validateCreateInput(input CreateDraftInput) error {
	name := strings.TrimSpace(input.CustomerName) != ""
	phone := strings.TrimSpace(input.CustomerPhone) != ""
	if name != phone {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone must be provided together")
	}

	for i, item := range input.Items {
		if item.VariantID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "draft item variant id required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "draft item quantity must be at least 1").
				WithDetails(map[string]any{"index": i})
		}
		if item.Total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "draft item total cannot be negative").
				WithDetails(map[string]any{"index": i})
		}
	}
	return nil
}
