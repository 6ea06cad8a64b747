package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/latta-clothing/storefront/internal/config"
	appErrors "github.com/latta-clothing/storefront/internal/errors"
	"github.com/latta-clothing/storefront/internal/models"
	redisRepo "github.com/latta-clothing/storefront/internal/repositories/redis"
	service "github.com/latta-clothing/storefront/internal/services"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTKey = "test-jwt-key"

func setupUserServiceTest() (service.UserService, *mockUserRepository, *mockNotificationService, redismock.ClientMock) {
	mockRepo := &mockUserRepository{}
	mockNotifications := &mockNotificationService{}

	client, redisMock := redismock.NewClientMock()
	rateLimiter := redisRepo.NewRateLimiter(client, &config.RateConfig{
		MaxAttempts: 5,
		WindowSize:  time.Minute,
	})

	userService := service.NewUserService(mockRepo, rateLimiter, mockNotifications, []byte(testJWTKey))

	return userService, mockRepo, mockNotifications, redisMock
}

// anyArgs accepts whatever the rate limiter pipeline sends; the attempt
// timestamps are wall-clock dependent.
func anyArgs(expected, actual []interface{}) error {
	return nil
}

func expectRateLimitPipeline(redisMock redismock.ClientMock, email string, attempts int64) {
	key := "login_attempts:" + email

	redisMock.CustomMatch(anyArgs).ExpectZRemRangeByScore(key, "0", "0").SetVal(0)
	redisMock.CustomMatch(anyArgs).ExpectZAdd(key, redis.Z{}).SetVal(1)
	redisMock.CustomMatch(anyArgs).ExpectZCard(key).SetVal(attempts)
	redisMock.CustomMatch(anyArgs).ExpectExpire(key, time.Minute).SetVal(true)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	req := &models.RegisterRequest{
		Name:     "Asha Shrestha",
		Email:    "asha@example.com",
		Password: "password123",
	}

	t.Run("Success", func(t *testing.T) {
		userService, mockRepo, mockNotifications, _ := setupUserServiceTest()

		mockRepo.On("GetUserByEmail", ctx, req.Email).Return(nil, assert.AnError).Once()
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()
		mockNotifications.On("SendEmail", mock.Anything, mock.AnythingOfType("*models.EmailNotificationRequest")).
			Return(&models.NotificationResponse{}, nil).Maybe()

		user, err := userService.Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, req.Email, user.Email)
		assert.NotEqual(t, req.Password, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Email Already Registered", func(t *testing.T) {
		userService, mockRepo, _, _ := setupUserServiceTest()

		existing := &models.User{ID: uuid.New(), Email: req.Email}
		mockRepo.On("GetUserByEmail", ctx, req.Email).Return(existing, nil).Once()

		user, err := userService.Register(ctx, req)

		assert.Error(t, err)
		assert.Nil(t, user)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	email := "asha@example.com"
	password := "password123"

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	storedUser := &models.User{
		ID:       uuid.New(),
		Name:     "Asha Shrestha",
		Email:    email,
		Password: string(hashed),
	}

	t.Run("Success", func(t *testing.T) {
		userService, mockRepo, _, redisMock := setupUserServiceTest()

		expectRateLimitPipeline(redisMock, email, 1)
		mockRepo.On("GetUserByEmail", ctx, email).Return(storedUser, nil).Once()

		result, err := userService.Login(ctx, &models.LoginRequest{Email: email, Password: password})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.NotEmpty(t, result.Token)
		assert.Positive(t, result.ExpiresIn)
	})

	t.Run("Failure - Wrong Password", func(t *testing.T) {
		userService, mockRepo, _, redisMock := setupUserServiceTest()

		expectRateLimitPipeline(redisMock, email, 2)
		mockRepo.On("GetUserByEmail", ctx, email).Return(storedUser, nil).Once()

		result, err := userService.Login(ctx, &models.LoginRequest{Email: email, Password: "wrong"})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, result.Token)
		assert.Equal(t, "Invalid email or password", result.Message)
		assert.Equal(t, 3, result.RemainingTries)
	})

	t.Run("Failure - Unknown Email", func(t *testing.T) {
		userService, mockRepo, _, redisMock := setupUserServiceTest()

		expectRateLimitPipeline(redisMock, email, 1)
		mockRepo.On("GetUserByEmail", ctx, email).Return(nil, assert.AnError).Once()

		result, err := userService.Login(ctx, &models.LoginRequest{Email: email, Password: password})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Empty(t, result.Token)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		userService, mockRepo, _, redisMock := setupUserServiceTest()

		expectRateLimitPipeline(redisMock, email, 5)

		oldest := strconv.FormatInt(time.Now().Add(-10*time.Second).Unix(), 10)
		redisMock.ExpectZRange("login_attempts:"+email, 0, 0).SetVal([]string{oldest})

		result, err := userService.Login(ctx, &models.LoginRequest{Email: email, Password: password})

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Positive(t, result.RetryAfter)
		mockRepo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		userService, mockRepo, _, _ := setupUserServiceTest()

		mockRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID, Email: "asha@example.com"}, nil).Once()

		user, err := userService.GetUserByID(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		userService, mockRepo, _, _ := setupUserServiceTest()

		mockRepo.On("GetUserByID", ctx, userID).Return(nil, assert.AnError).Once()

		user, err := userService.GetUserByID(ctx, userID)

		assert.Error(t, err)
		assert.Nil(t, user)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}
