package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleChef    Role = "chef"
	RoleWaiter  Role = "waiter"
	RoleCashier Role = "cashier"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleChef, RoleWaiter, RoleCashier:
		return Role(raw), true
	default:
		return "", false
	}
}

type Staff struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex" json:"username"`
	Name         string       `gorm:"not null" json:"name"`
	Role         Role         `gorm:"not null" json:"role"`
	PasswordHash string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }

// Identity is the resolved caller the rest of the system trusts.
type Identity struct {
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name"`
	Role Role         `json:"role"`
}
