package dto

import (
	"time"

	"github.com/minijira/issue-tracker/internal/domain"
)

// RegisterRequest payload for new users. Presence of name, email and
// password is checked by the auth service so the message stays stable.
type RegisterRequest struct {
	Name     string `json:"name" validate:"max=120"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user; the password hash never leaves
// the server.
type UserResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// NewAuthResponse maps a session.
func NewAuthResponse(s *domain.Session) AuthResponse {
	return AuthResponse{User: NewUserResponse(s.User), Token: s.Token, ExpiresAt: s.ExpiresAt}
}
