package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accesshub/internal/auth"
	apperrors "accesshub/internal/errors"
	"accesshub/internal/model"
	"accesshub/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the email is unknown so that both login
// failure paths cost one bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService handles registration and credential validation.
type AuthService interface {
	Register(ctx context.Context, email, username, password, role string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
	}
}

// Register creates a new user with a hashed password and returns it together
// with a freshly issued token. Email and username must be globally unique;
// the store's unique indexes are the final arbiter under concurrency.
func (s *authService) Register(ctx context.Context, email, username, password, role string) (*model.User, string, error) {
	if role == "" {
		role = model.RoleUser
	} else if !model.ValidRole(role) {
		// Handlers validate the enum at the edge, but callers like the seed
		// command reach the service directly.
		return nil, "", apperrors.ErrInvalidRole
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", apperrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Unavailable(err)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, "", apperrors.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Unavailable(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the pre-checks; the unique
		// index rejects it here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrDuplicateUser
		}
		return nil, "", apperrors.Unavailable(err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Login validates credentials and returns the user with a freshly issued token.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a comparison so unknown emails take as long as mismatches.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", apperrors.Unavailable(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}
