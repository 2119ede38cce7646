package models

import "time"

// UserRole mirrors the role column of a user row.
type UserRole string

const (
	RoleUser    UserRole = "USER"
	RoleManager UserRole = "MANAGER"
	RoleAdmin   UserRole = "ADMIN"
)

// User is the users table row. Deletion is soft via deleted_at.
type User struct {
	UserID       string   `db:"user_id"`
	Name         string   `db:"name"`
	Role         UserRole `db:"role"`
	PasswordHash string   `db:"password_hash"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
