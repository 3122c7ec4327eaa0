package users

import (
	"strings"
	"time"

	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/Nishantvt5/merch-app/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `json:"is_active"`
	IsCustomer  bool       `json:"is_customer"`
	IsAdmin     bool       `json:"is_admin"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	DateJoined  time.Time  `json:"date_joined"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     *bool
	IsAdmin      bool
}

// NormalizeEmail is the canonical form stored in users.email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleOf maps the user flags onto the token role.
func RoleOf(u *models.User) enums.Role {
	if u.IsAdmin {
		return enums.RoleAdmin
	}
	return enums.RoleCustomer
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsCustomer:  u.IsCustomer,
		IsAdmin:     u.IsAdmin,
		Role:        RoleOf(u),
		LastLoginAt: u.LastLoginAt,
		DateJoined:  u.DateJoined,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	return &models.User{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		FirstName:    strings.TrimSpace(c.FirstName),
		LastName:     strings.TrimSpace(c.LastName),
		IsActive:     isActive,
		IsCustomer:   !c.IsAdmin,
		IsAdmin:      c.IsAdmin,
		IsStaff:      c.IsAdmin,
	}
}
