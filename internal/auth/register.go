package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/ageverify"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/users"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/config"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/security"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// RegisterRequest contains the payload required to create a shopper account.
// The birth date feeds age verification at every subsequent login.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	BirthDate       string `json:"birth_date" validate:"required"`
	AcceptTOS       bool   `json:"accept_tos"`
}

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		now:         now,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters")
	}
	if len(req.Password) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}
	if req.Password != req.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}
	if !req.AcceptTOS {
		return pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}

	today := s.now().UTC()
	birthDate, err := ageverify.ParseBirthDate(req.BirthDate, today)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid birth date")
	}
	// minors can register; they are gated at the restricted-product checks
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		if _, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			PasswordHash: passwordHash,
			BirthDate:    birthDate,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
}
