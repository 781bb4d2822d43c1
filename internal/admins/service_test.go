package admins

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

type fakeRepo struct {
	admins map[uuid.UUID]*models.Admin
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{admins: make(map[uuid.UUID]*models.Admin)}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	for _, existing := range f.admins {
		if existing.Email == admin.Email {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_admins_email"}
		}
	}
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	copied := *admin
	f.admins[admin.ID] = &copied
	return admin, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *admin
	return &copied, nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) List(ctx context.Context) ([]models.Admin, error) {
	out := make([]models.Admin, 0, len(f.admins))
	for _, admin := range f.admins {
		out = append(out, *admin)
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	if _, ok := f.admins[admin.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *admin
	f.admins[admin.ID] = &copied
	return admin, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.admins, id)
	return nil
}

func (f *fakeRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if admin, ok := f.admins[id]; ok {
		admin.LastLoginAt = &at
	}
	return nil
}

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testPasswordCfg)
	require.NoError(t, err)
	return svc
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	admin, err := svc.Create(context.Background(), CreateAdminInput{
		Email:    "Ops@Example.com",
		Name:     "Operator",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", admin.Email)
	assert.True(t, admin.IsActive)

	stored := repo.admins[admin.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)

	ok, err := security.VerifyPassword("correct horse", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateShortPasswordRejected(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.Create(context.Background(), CreateAdminInput{
		Email:    "ops@example.com",
		Name:     "Operator",
		Password: "short",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.Create(context.Background(), CreateAdminInput{
		Email:    "ops@example.com",
		Name:     "Operator",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateAdminInput{
		Email:    "OPS@example.com",
		Name:     "Impostor",
		Password: "another pass",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestUpdateChangesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	admin, err := svc.Create(context.Background(), CreateAdminInput{
		Email:    "ops@example.com",
		Name:     "Operator",
		Password: "correct horse",
	})
	require.NoError(t, err)

	newPassword := "battery staple"
	_, err = svc.Update(context.Background(), admin.ID, UpdateAdminInput{Password: &newPassword})
	require.NoError(t, err)

	ok, err := security.VerifyPassword(newPassword, repo.admins[admin.ID].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("correct horse", repo.admins[admin.ID].PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeactivateAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	admin, err := svc.Create(context.Background(), CreateAdminInput{
		Email:    "ops@example.com",
		Name:     "Operator",
		Password: "correct horse",
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), admin.ID, UpdateAdminInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestDeleteMissingAdmin(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	err := svc.Delete(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
