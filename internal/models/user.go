package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleDispatcher, RoleDriver}

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	DriverID     string             `bson:"driver_id,omitempty" json:"driverId,omitempty"`
	IsActive     bool               `bson:"is_active" json:"isActive"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate carries the editable subset of a user. Empty fields are left untouched.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	DriverID string `json:"driver_id,omitempty"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleDispatcher, RoleDriver:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role manages the fleet (admin or dispatcher).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleDispatcher
}

// Merge applies the non-empty fields of other onto u. Identity and role are never copied.
func (u *User) Merge(other User) {
	if other.Name != "" {
		u.Name = other.Name
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.Phone != "" {
		u.Phone = other.Phone
	}
	if !other.UpdatedAt.IsZero() {
		u.UpdatedAt = other.UpdatedAt
	}
}
