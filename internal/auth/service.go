package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/internal/admins"
	pkgauth "github.com/stockroomhq/stockroom-backend/pkg/auth"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

// LoginRequest is the login payload decoded straight from the HTTP body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the minted token and the authenticated operator.
type LoginResult struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Admin       admins.AdminDTO `json:"admin"`
}

// Service authenticates back-office operators.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type service struct {
	repo   admins.Repository
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// Option customizes the auth service.
type Option func(*service)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds an auth service over the admins repository.
func NewService(repo admins.Repository, jwtCfg config.JWTConfig, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admins repository required")
	}
	s := &service{repo: repo, jwtCfg: jwtCfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login verifies credentials and mints an access token. Unknown email and
// wrong password return the same error so the response does not reveal which
// accounts exist.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup admin")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	// Best effort; a failed timestamp write must not block the login.
	_ = s.repo.TouchLastLogin(ctx, admin.ID, now)

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.TokenTTL()),
		Admin: admins.AdminDTO{
			ID:          admin.ID,
			Email:       admin.Email,
			Name:        admin.Name,
			IsActive:    admin.IsActive,
			LastLoginAt: admin.LastLoginAt,
			CreatedAt:   admin.CreatedAt,
		},
	}, nil
}
