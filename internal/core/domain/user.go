package domain

import "time"

// UserRole defines the permission level of a user across the application.
type UserRole string

const (
	RoleUser    UserRole = "USER"
	RoleManager UserRole = "MANAGER"
	RoleAdmin   UserRole = "ADMIN"
)

// User represents a user of the application in the domain.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (e.g., UUID)
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"` // bcrypt hash, never serialized
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
