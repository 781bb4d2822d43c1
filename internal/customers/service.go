package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Service exposes customer operations.
type Service interface {
	// FindOrCreateByPhone runs inside the caller's transaction so a failed
	// draft creation also rolls back the customer insert.
	FindOrCreateByPhone(ctx context.Context, tx *gorm.DB, name, phone string) (*models.Customer, error)
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context) ([]CustomerDTO, error)
}

// CreateCustomerInput holds the validated payload to create a customer.
type CreateCustomerInput struct {
	Name  string
	Phone string
}

// UpdateCustomerInput holds optional mutation values for a customer.
type UpdateCustomerInput struct {
	Name   *string
	Phone  *string
	Status *enums.CustomerStatus
}

// CustomerDTO is the read model returned to controllers.
type CustomerDTO struct {
	ID     uuid.UUID            `json:"id"`
	Name   string               `json:"name"`
	Phone  string               `json:"phone"`
	Status enums.CustomerStatus `json:"status"`
}

const customerInsertSavepoint = "customer_phone_insert"

type service struct {
	repo Repository
}

// NewService builds a customer service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) FindOrCreateByPhone(ctx context.Context, tx *gorm.DB, name, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	repo := s.repo.WithTx(tx)
	existing, err := repo.FindByPhone(ctx, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer by phone")
	}

	customer := &models.Customer{
		Name:   strings.TrimSpace(name),
		Phone:  phone,
		Status: enums.CustomerStatusActive,
	}

	// The insert runs under a savepoint: a unique violation aborts the rest of
	// a Postgres transaction, and the recovery lookup below must still run on
	// this same transaction.
	if tx != nil {
		if spErr := tx.SavePoint(customerInsertSavepoint).Error; spErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, spErr, "savepoint customer insert")
		}
	}
	created, err := repo.Create(ctx, customer)
	if err != nil {
		// A concurrent creator may have won the phone uniqueness race; reuse
		// their row rather than failing the draft.
		if db.IsUniqueViolation(err, "idx_customers_phone") {
			if tx != nil {
				if rbErr := tx.RollbackTo(customerInsertSavepoint).Error; rbErr != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, rbErr, "rollback customer insert")
				}
			}
			if winner, findErr := repo.FindByPhone(ctx, phone); findErr == nil {
				return winner, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return created, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	customer, err := s.repo.Create(ctx, &models.Customer{
		Name:   name,
		Phone:  phone,
		Status: enums.CustomerStatusActive,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_customers_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return toDTO(customer), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	if input.Name != nil {
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		customer.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer status")
		}
		customer.Status = *input.Status
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_customers_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return toDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customer references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "customer is referenced by drafts or invoices")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return toDTO(customer), nil
}

func (s *service) List(ctx context.Context) ([]CustomerDTO, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	dtos := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, *toDTO(&customers[i]))
	}
	return dtos, nil
}

func toDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:     customer.ID,
		Name:   customer.Name,
		Phone:  customer.Phone,
		Status: customer.Status,
	}
}
