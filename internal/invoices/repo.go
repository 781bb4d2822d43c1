package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Repository exposes invoice persistence plus the draft and variant access
// conversion needs inside its transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	CreateItems(ctx context.Context, items []models.InvoiceItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	// List pages newest-first; after narrows to rows strictly older than the
	// cursor position.
	List(ctx context.Context, after *pagination.Cursor, limit int) ([]models.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	FindDraft(ctx context.Context, id uuid.UUID) (*models.InvoiceDraft, error)
	// DeleteDraft returns the number of rows removed so callers can detect a
	// draft that a concurrent conversion consumed first.
	DeleteDraft(ctx context.Context, id uuid.UUID) (int64, error)

	FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	UpdateVariantStock(ctx context.Context, id uuid.UUID, stockQty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoices repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, after *pagination.Cursor, limit int) ([]models.Invoice, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC, id DESC")
	if after != nil {
		query = query.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) UpdateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id).Error
}

func (r *repository) FindDraft(ctx context.Context, id uuid.UUID) (*models.InvoiceDraft, error) {
	var draft models.InvoiceDraft
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("id = ?", id).
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *repository) DeleteDraft(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.InvoiceDraft{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// FindVariantForUpdate locks the variant row for the rest of the transaction
// so concurrent conversions serialize on price reads and stock writes.
func (r *repository) FindVariantForUpdate(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) UpdateVariantStock(ctx context.Context, id uuid.UUID, stockQty int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", id).
		Update("stock_qty", stockQty).Error
}
