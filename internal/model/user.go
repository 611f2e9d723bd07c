package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role controls which routes a user may reach.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleClient  Role = "CLIENT"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleClient:
		return true
	}
	return false
}

// User represents a registered customer or staff member.
type User struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	FirstName    string          `json:"first_name" gorm:"size:255;not null"`
	LastName     string          `json:"last_name" gorm:"size:255"`
	Email        string          `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string          `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string          `json:"phone,omitempty" gorm:"size:50"`
	Role         Role            `json:"role" gorm:"type:varchar(20);not null;default:'CLIENT';index"`
	Balance      decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`
	MaxAmount    decimal.Decimal `json:"max_amount" gorm:"type:decimal(20,2);not null;default:0"` // zero means no ceiling
	Verified     bool            `json:"verified" gorm:"default:false"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PublicUser is the profile view returned to callers. It carries no
// credential material and is safe to serialize anywhere.
type PublicUser struct {
	ID        uint            `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Role      Role            `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	MaxAmount decimal.Decimal `json:"max_amount"`
}

// Public builds the caller-facing view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Balance:   u.Balance,
		MaxAmount: u.MaxAmount,
	}
}
