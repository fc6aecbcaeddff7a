package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accesshub/internal/cache"
	apperrors "accesshub/internal/errors"
	"accesshub/internal/model"
	"accesshub/internal/repository"
)

const (
	userListCacheKey = "users:all"
	userListCacheTTL = time.Minute
)

// ProfileUpdate carries the caller's optional profile changes. Empty fields
// are left untouched.
type ProfileUpdate struct {
	Username string
	Password string
}

// UserService exposes user-management operations.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateProfile(ctx context.Context, callerID uuid.UUID, update ProfileUpdate) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(users repository.UserRepository, cache *cache.Client) UserService {
	return &userService{users: users, cache: cache}
}

// List returns all user records. Password hashes never serialize (json:"-"),
// so the cached copy is as safe as the live one.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	var cached []model.User
	if s.cache.GetJSON(ctx, userListCacheKey, &cached) {
		return cached, nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}

	s.cache.SetJSON(ctx, userListCacheKey, users, userListCacheTTL)
	return users, nil
}

// Delete removes a user record.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Unavailable(err)
	}
	_ = s.cache.Delete(ctx, userListCacheKey)
	return nil
}

// UpdateProfile mutates the caller's own record only; the caller identity
// comes from verified token claims, never from the request body.
func (s *userService) UpdateProfile(ctx context.Context, callerID uuid.UUID, update ProfileUpdate) (*model.User, error) {
	user, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Unavailable(err)
	}

	if update.Username != "" && update.Username != user.Username {
		if other, err := s.users.FindByUsername(ctx, update.Username); err == nil && other.ID != user.ID {
			return nil, apperrors.ErrUsernameTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unavailable(err)
		}
		user.Username = update.Username
	}

	if update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, apperrors.Unavailable(err)
	}

	_ = s.cache.Delete(ctx, userListCacheKey)
	return user, nil
}
