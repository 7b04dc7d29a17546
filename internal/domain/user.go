package domain

import "time"

// UserRole is a coarse authorization label carried in tokens.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is an actor who can authenticate and be assigned tickets.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}
