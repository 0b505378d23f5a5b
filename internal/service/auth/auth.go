package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/medify/internal/apperrors"
	"github.com/nkiryanov/medify/internal/models"
)

type UserService interface {
	CreateUser(ctx context.Context, nu models.NewUser) (models.User, error)

	// Has to return apperrors.ErrInvalidCredentials or apperrors.ErrUserInactive
	Login(ctx context.Context, email string, password string) (models.User, error)

	GetUserByID(ctx context.Context, userID int64) (models.User, error)
}

// Issue and verify signed access tokens
type TokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)

	// Has to wrap apperrors.ErrTokenInvalid on any failure
	Parse(token string) (models.Principal, error)
}

// Tokens logged out before their expiry
type RevocationStore interface {
	Revoke(token string, expiresAt time.Time)
	IsRevoked(token string) bool
}

// Auth service
type AuthService struct {
	users   UserService
	tokens  TokenManager
	revoked RevocationStore
}

func NewAuthService(users UserService, tokens TokenManager, revoked RevocationStore) (*AuthService, error) {
	if users == nil || tokens == nil || revoked == nil {
		return nil, errors.New("dependencies must not be nil")
	}

	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
	}, nil
}

// Register patient or doctor. Empty role means patient.
// Admins are never created through public registration.
func (s *AuthService) Register(ctx context.Context, nu models.NewUser) (models.User, error) {
	switch nu.Role {
	case "":
		nu.Role = models.RolePatient
	case models.RolePatient, models.RoleDoctor:
	default:
		return models.User{}, fmt.Errorf("role %q can't self register: %w", nu.Role, apperrors.ErrForbidden)
	}

	return s.users.CreateUser(ctx, nu)
}

// Check credentials and issue access token
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.IssuedToken, models.User, error) {
	user, err := s.users.Login(ctx, email, password)
	if err != nil {
		return models.IssuedToken{}, user, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return token, user, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return token, user, nil
}

// Revoke the token until it expires.
// Token that fails verification is ignored: it is rejected anyway and must not fill the store
func (s *AuthService) Logout(token string) models.LogoutResult {
	if token == "" {
		return models.LogoutResult{}
	}

	p, err := s.tokens.Parse(token)
	if err != nil {
		return models.LogoutResult{}
	}

	s.revoked.Revoke(token, p.ExpiresAt)

	return models.LogoutResult{Revoked: true, ExpiresAt: p.ExpiresAt}
}

// Verify access token and return its principal.
// Revoked tokens are rejected before the signature is checked.
func (s *AuthService) Authenticate(token string) (models.Principal, error) {
	if token == "" {
		return models.Principal{}, apperrors.ErrUnauthorized
	}

	if s.revoked.IsRevoked(token) {
		return models.Principal{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, apperrors.ErrTokenRevoked)
	}

	p, err := s.tokens.Parse(token)
	if err != nil {
		return p, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	return p, nil
}

// Current user profile
func (s *AuthService) Me(ctx context.Context, p models.Principal) (models.User, error) {
	return s.users.GetUserByID(ctx, p.UserID)
}
