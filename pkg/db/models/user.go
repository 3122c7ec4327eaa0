package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	IsCustomer   bool       `gorm:"column:is_customer;not null"`
	IsAdmin      bool       `gorm:"column:is_admin;not null"`
	IsStaff      bool       `gorm:"column:is_staff;not null"`
	DateJoined   time.Time  `gorm:"column:date_joined;autoCreateTime"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeSave keeps the role flags consistent: admins are staff and never customers.
func (u *User) BeforeSave(*gorm.DB) error {
	if u.IsAdmin {
		u.IsCustomer = false
		u.IsStaff = true
	}
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
