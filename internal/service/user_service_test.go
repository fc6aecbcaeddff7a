package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accesshub/internal/cache"
	apperrors "accesshub/internal/errors"
	"accesshub/internal/model"
)

// noCache is a zero-value cache client; all operations degrade to misses.
func noCache() *cache.Client {
	return &cache.Client{}
}

func TestUserService_List(t *testing.T) {
	mockRepo := new(MockUserRepository)
	expected := []model.User{
		{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Role: model.RoleAdmin},
		{ID: uuid.New(), Username: "bob", Email: "bob@example.com", Role: model.RoleUser},
	}
	mockRepo.On("List", mock.Anything).Return(expected, nil)

	svc := NewUserService(mockRepo, noCache())
	users, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, users)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Delete(t *testing.T) {
	t.Run("existing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		id := uuid.New()
		mockRepo.On("Delete", mock.Anything, id).Return(nil)

		svc := NewUserService(mockRepo, noCache())
		assert.NoError(t, svc.Delete(context.Background(), id))
		mockRepo.AssertExpectations(t)
	})

	t.Run("absent id", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		id := uuid.New()
		mockRepo.On("Delete", mock.Anything, id).Return(gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, noCache())
		err := svc.Delete(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	callerID := uuid.New()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcryptCost)

	current := func() *model.User {
		return &model.User{
			ID:           callerID,
			Username:     "oldname",
			Email:        "caller@example.com",
			PasswordHash: string(hashed),
			Role:         model.RoleUser,
		}
	}

	t.Run("username change", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, callerID).Return(current(), nil)
		mockRepo.On("FindByUsername", mock.Anything, "newname").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo, noCache())
		user, err := svc.UpdateProfile(context.Background(), callerID, ProfileUpdate{Username: "newname"})

		assert.NoError(t, err)
		assert.Equal(t, "newname", user.Username)
		assert.Equal(t, string(hashed), user.PasswordHash) // untouched
		mockRepo.AssertExpectations(t)
	})

	t.Run("username collides with another user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, callerID).Return(current(), nil)
		mockRepo.On("FindByUsername", mock.Anything, "taken").Return(&model.User{
			ID:       uuid.New(),
			Username: "taken",
		}, nil)

		svc := NewUserService(mockRepo, noCache())
		user, err := svc.UpdateProfile(context.Background(), callerID, ProfileUpdate{Username: "taken"})

		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
		assert.Nil(t, user)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, callerID).Return(current(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo, noCache())
		user, err := svc.UpdateProfile(context.Background(), callerID, ProfileUpdate{Password: "new-password"})

		assert.NoError(t, err)
		assert.NotEqual(t, string(hashed), user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password")))
	})

	t.Run("caller record missing", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, callerID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, noCache())
		user, err := svc.UpdateProfile(context.Background(), callerID, ProfileUpdate{Username: "whatever"})

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("update races a rename into the same username", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, callerID).Return(current(), nil)
		mockRepo.On("FindByUsername", mock.Anything, "newname").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)

		svc := NewUserService(mockRepo, noCache())
		user, err := svc.UpdateProfile(context.Background(), callerID, ProfileUpdate{Username: "newname"})

		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
		assert.Nil(t, user)
	})
}
