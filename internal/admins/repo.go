package admins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository exposes admin account persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an admins repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repository) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *repository) Update(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if err := r.db.WithContext(ctx).Save(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Admin{}, "id = ?", id).Error
}

func (r *repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
