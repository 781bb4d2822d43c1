package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

// Service exposes admin account management.
type Service interface {
	Create(ctx context.Context, input CreateAdminInput) (*AdminDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AdminDTO, error)
	List(ctx context.Context) ([]AdminDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAdminInput) (*AdminDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateAdminInput holds the validated payload to create an operator account.
type CreateAdminInput struct {
	Email    string
	Name     string
	Password string
}

// UpdateAdminInput holds optional admin mutations.
type UpdateAdminInput struct {
	Name     *string
	Password *string
	IsActive *bool
}

// AdminDTO is the read model; the password hash never leaves the service.
type AdminDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService builds an admin service.
func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admins repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateAdminInput) (*AdminDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin email required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin name required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin, err := s.repo.Create(ctx, &models.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_admins_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "admin email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return toDTO(admin), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AdminDTO, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	return toDTO(admin), nil
}

func (s *service) List(ctx context.Context) ([]AdminDTO, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins")
	}
	dtos := make([]AdminDTO, 0, len(admins))
	for i := range admins {
		dtos = append(dtos, *toDTO(&admins[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAdminInput) (*AdminDTO, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin name cannot be empty")
		}
		admin.Name = name
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		admin.PasswordHash = hash
	}
	if input.IsActive != nil {
		admin.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, admin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update admin")
	}
	return toDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete admin")
	}
	return nil
}

func toDTO(admin *models.Admin) *AdminDTO {
	return &AdminDTO{
		ID:          admin.ID,
		Email:       admin.Email,
		Name:        admin.Name,
		IsActive:    admin.IsActive,
		LastLoginAt: admin.LastLoginAt,
		CreatedAt:   admin.CreatedAt,
	}
}
