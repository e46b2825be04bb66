package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should register a valid user and seed categories", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		catRepo := new(MockCategoryRepo)
		service := NewAuthService(mockRepo, NewCategoryService(catRepo, nil))
		ctx := context.Background()

		input := RegisterInput{
			Email:    "test_success@kanso.app",
			Username: "Success_User",
			Password: "StrongPassword123!",
		}

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
		catRepo.On("Create", ctx, mock.AnythingOfType("*domain.Category")).Return(nil).Times(len(domain.DefaultCategories))

		user, err := service.Register(ctx, input)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, input.Email, user.Email)
		assert.Equal(t, "success_user", user.Username)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)

		mockRepo.AssertExpectations(t)
		catRepo.AssertExpectations(t)
	})

	t.Run("Success: Seeding failure does not fail registration", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		catRepo := new(MockCategoryRepo)
		service := NewAuthService(mockRepo, NewCategoryService(catRepo, nil))
		ctx := context.Background()

		mockRepo.On("Create", ctx, mock.Anything).Return(nil)
		catRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		user, err := service.Register(ctx, RegisterInput{Email: "seed@kanso.app", Username: "seeder", Password: "StrongPassword123!"})

		assert.NoError(t, err)
		assert.NotNil(t, user)
		catRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("Fail: Should return error for invalid email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{Email: "not-an-email", Password: "pass"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return error for short password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{Email: "valid@email.com", Username: "valid", Password: "short"}

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Nil(t, user)

		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return error for invalid username", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)

		user, err := service.Register(context.Background(), RegisterInput{Email: "valid@email.com", Username: "no spaces", Password: "StrongPassword123!"})

		assert.ErrorIs(t, err, domain.ErrInvalidUsername)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should propagate repository error (Username taken)", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrUsernameTaken)

		_, err := service.Register(ctx, RegisterInput{Email: "fresh@email.com", Username: "taken", Password: "StrongPassword123!"})

		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})

	t.Run("Fail: Should propagate repository error (Duplicate Email)", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		ctx := context.Background()

		input := RegisterInput{Email: "duplicate@email.com", Username: "duplicate", Password: "StrongPassword123!"}

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		user, err := service.Register(ctx, input)

		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.Nil(t, user)

		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stored, err := domain.NewUser("u1", "login@kanso.app", "login_user")
	require.NoError(t, err)
	require.NoError(t, stored.SetPassword("CorrectHorse1"))

	t.Run("Success: Normalizes email and checks password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		mockRepo.On("GetByEmail", ctx, "login@kanso.app").Return(stored, nil)

		user, err := service.Login(ctx, LoginInput{Email: "  Login@Kanso.app ", Password: "CorrectHorse1"})

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("Success: Username login when email is empty", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		mockRepo.On("GetByUsername", ctx, "login_user").Return(stored, nil)

		user, err := service.Login(ctx, LoginInput{Username: " Login_User", Password: "CorrectHorse1"})

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		mockRepo.AssertNotCalled(t, "GetByEmail")
	})

	t.Run("Fail: No identifier", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)

		_, err := service.Login(ctx, LoginInput{Password: "CorrectHorse1"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		mockRepo.On("GetByEmail", ctx, "login@kanso.app").Return(stored, nil)

		_, err := service.Login(ctx, LoginInput{Email: "login@kanso.app", Password: "wrong-password"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: Unknown email looks like wrong credentials", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		mockRepo.On("GetByEmail", ctx, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		_, err := service.Login(ctx, LoginInput{Email: "ghost@kanso.app", Password: "whatever123"})

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: Store error is not hidden", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, nil)
		dbErr := errors.New("connection reset")
		mockRepo.On("GetByEmail", ctx, "login@kanso.app").Return(nil, dbErr)

		_, err := service.Login(ctx, LoginInput{Email: "login@kanso.app", Password: "CorrectHorse1"})

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
