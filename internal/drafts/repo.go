package drafts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository exposes invoice draft persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDraft(ctx context.Context, draft *models.InvoiceDraft) (*models.InvoiceDraft, error)
	CreateItems(ctx context.Context, items []models.InvoiceDraftItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InvoiceDraft, error)
	List(ctx context.Context) ([]models.InvoiceDraft, error)
	UpdateDraft(ctx context.Context, draft *models.InvoiceDraft) (*models.InvoiceDraft, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.InvoiceDraftItem, error)
	UpdateItem(ctx context.Context, item *models.InvoiceDraftItem) (*models.InvoiceDraftItem, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a drafts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateDraft(ctx context.Context, draft *models.InvoiceDraft) (*models.InvoiceDraft, error) {
	if err := r.db.WithContext(ctx).Create(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.InvoiceDraftItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InvoiceDraft, error) {
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

func (r *repository) List(ctx context.Context) ([]models.InvoiceDraft, error) {
	var draftList []models.InvoiceDraft
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").
		Find(&draftList).Error
	if err != nil {
		return nil, err
	}
	return draftList, nil
}

func (r *repository) UpdateDraft(ctx context.Context, draft *models.InvoiceDraft) (*models.InvoiceDraft, error) {
	if err := r.db.WithContext(ctx).Save(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

// DeleteDraft hard-deletes the header; items cascade at the database level.
func (r *repository) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InvoiceDraft{}, "id = ?", id).Error
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.InvoiceDraftItem, error) {
	var item models.InvoiceDraftItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItem(ctx context.Context, item *models.InvoiceDraftItem) (*models.InvoiceDraftItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InvoiceDraftItem{}, "id = ?", itemID).Error
}
