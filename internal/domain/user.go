package domain

import "time"

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleMover  UserRole = "mover"
)

// ValidUserRole reports whether r is a known role
func ValidUserRole(r UserRole) bool {
	return r == RoleClient || r == RoleMover
}

type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	Role         UserRole  `gorm:"column:role" json:"role"`
	Name         string    `gorm:"column:name" json:"name"`
	Phone        string    `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }
