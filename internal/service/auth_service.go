package service

import (
	"context"
	"errors"
	"strings"

	"github.com/minijira/issue-tracker/internal/auth"
	"github.com/minijira/issue-tracker/internal/config"
	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// RegisterInput is the payload of a self-registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// Role defaults to user.
	Role domain.UserRole
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new user account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Session, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}

	role := input.Role
	if role == "" {
		role = domain.UserRoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role must be one of admin, user", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, emailTaken(email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, emailTaken(email)
		}
		return nil, err
	}
	return s.session(user)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, err
	}
	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("Invalid credentials")
	}
	return s.session(user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) session(user *domain.User) (*domain.Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &domain.Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailTaken(email string) error {
	return apperrors.NewConflict("Email already in use", map[string]any{"email": email})
}
