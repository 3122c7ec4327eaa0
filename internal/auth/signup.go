package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Nishantvt5/merch-app/internal/users"
	"github.com/Nishantvt5/merch-app/pkg/config"
	"github.com/Nishantvt5/merch-app/pkg/db"
	pkgerrors "github.com/Nishantvt5/merch-app/pkg/errors"
	"github.com/Nishantvt5/merch-app/pkg/security"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// SignupService creates customer accounts.
type SignupService interface {
	Signup(ctx context.Context, req SignupRequest) (*users.UserDTO, error)
}

// SignupServiceParams packages the dependencies for the signup flow.
type SignupServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type signupService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewSignupService builds a signup service with the provided dependencies.
func NewSignupService(params SignupServiceParams) (SignupService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &signupService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *signupService) Signup(ctx context.Context, req SignupRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, fieldError("email", "email is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, fieldError("first_name", "first_name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, fieldError("last_name", "last_name is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, fieldError("password", "password must be at least 8 characters")
	}
	if req.Password != req.PasswordConfirm {
		return nil, fieldError("password_confirm", "passwords do not match")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return createUser(ctx, s.db, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
}

// createUser inserts the account after an explicit email check. A concurrent
// insert still surfaces as a conflict through users_email_key.
func createUser(ctx context.Context, client *db.Client, dto users.CreateUserDTO) (*users.UserDTO, error) {
	var created *users.UserDTO
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, dto.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		user, err := userRepo.Create(ctx, dto)
		if err != nil {
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string{field: message})
}
