package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository exposes customer persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	CountReferences(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// CountReferences reports how many drafts and invoices point at the customer.
func (r *repository) CountReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	var drafts int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceDraft{}).Where("customer_id = ?", id).Count(&drafts).Error; err != nil {
		return 0, err
	}
	var invoices int64
	if err := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoices).Error; err != nil {
		return 0, err
	}
	return drafts + invoices, nil
}
