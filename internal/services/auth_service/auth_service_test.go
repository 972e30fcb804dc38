package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/jwt"
	"ideadrop/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) UserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func newTestService(t *testing.T, repo *MockUserRepository) (*AuthService, *jwt.Codec) {
	t.Helper()

	codec, err := jwt.NewCodec("test-secret")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAuthService(log, repo, codec, time.Minute, 30*24*time.Hour), codec
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, codec := newTestService(t, repo)

		userID := uuid.New()
		repo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == "a@x.com" && u.Name == "A" && len(u.Password) > 0
		})).Return(userID, nil).Once()

		pair, user, err := service.Register(ctx, "A", "a@x.com", "p1")
		require.NoError(t, err)

		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "a@x.com", user.Email)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		claims, err := codec.Verify(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)

		claims, err = codec.Verify(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt, 2*time.Second)

		repo.AssertExpectations(t)
	})

	t.Run("password is hashed before save", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		var saved models.User
		repo.On("SaveUser", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(models.User)
			}).
			Return(uuid.New(), nil).Once()

		_, _, err := service.Register(ctx, "A", "a@x.com", "p1")
		require.NoError(t, err)

		assert.NotEqual(t, []byte("p1"), saved.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword(saved.Password, []byte("p1")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		repo.On("SaveUser", mock.Anything, mock.Anything).
			Return(uuid.Nil, storage.ErrUserExists).Once()

		_, _, err := service.Register(ctx, "A", "a@x.com", "p1")
		assert.ErrorIs(t, err, ErrUserExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	testEmail := "test@example.com"
	testPassword := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	testUser := models.User{
		ID:       uuid.New(),
		Name:     "Tester",
		Email:    testEmail,
		Password: hashedPassword,
	}

	t.Run("successful login", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, codec := newTestService(t, repo)

		repo.On("UserByEmail", mock.Anything, testEmail).Return(testUser, nil).Once()

		pair, user, err := service.Login(ctx, testEmail, testPassword)
		require.NoError(t, err)

		assert.Equal(t, testUser.ID, user.ID)

		claims, err := codec.Verify(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, claims.UserID)

		repo.AssertExpectations(t)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		repo.On("UserByEmail", mock.Anything, testEmail).Return(testUser, nil).Once()
		repo.On("UserByEmail", mock.Anything, "nobody@example.com").
			Return(models.User{}, storage.ErrUserNotFound).Once()

		_, _, errWrongPass := service.Login(ctx, testEmail, "wrong_password")
		_, _, errNoUser := service.Login(ctx, "nobody@example.com", testPassword)

		assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
		assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		repo.On("UserByEmail", mock.Anything, testEmail).
			Return(models.User{}, errors.New("db error")).Once()

		_, _, err := service.Login(ctx, testEmail, testPassword)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	testUser := models.User{
		ID:    uuid.New(),
		Name:  "Tester",
		Email: "test@example.com",
	}

	t.Run("no token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		_, _, err := service.Refresh(ctx, "")
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		_, _, err := service.Refresh(ctx, "invalid.token.string")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, codec := newTestService(t, repo)

		expired, err := codec.Mint(testUser.ID, -time.Hour)
		require.NoError(t, err)

		_, _, err = service.Refresh(ctx, expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		other, err := jwt.NewCodec("other-secret")
		require.NoError(t, err)

		forged, err := other.Mint(testUser.ID, time.Hour)
		require.NoError(t, err)

		_, _, err = service.Refresh(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("user deleted since issue", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, codec := newTestService(t, repo)

		token, err := codec.Mint(testUser.ID, time.Hour)
		require.NoError(t, err)

		repo.On("UserByID", mock.Anything, testUser.ID).
			Return(models.User{}, storage.ErrUserNotFound).Once()

		_, _, err = service.Refresh(ctx, token)
		assert.ErrorIs(t, err, ErrUserNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("success mints short-lived access token only", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, codec := newTestService(t, repo)

		refreshToken, err := codec.Mint(testUser.ID, 30*24*time.Hour)
		require.NoError(t, err)

		repo.On("UserByID", mock.Anything, testUser.ID).Return(testUser, nil).Once()

		accessToken, user, err := service.Refresh(ctx, refreshToken)
		require.NoError(t, err)

		assert.Equal(t, testUser.ID, user.ID)

		claims, err := codec.Verify(accessToken)
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, claims.UserID)
		// short TTL regardless of how long the refresh token has left
		assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt, 2*time.Second)

		repo.AssertExpectations(t)
	})
}

func TestAuthService_UserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestService(t, repo)

		id := uuid.New()
		repo.On("UserByID", mock.Anything, id).
			Return(models.User{}, storage.ErrUserNotFound).Once()

		_, err := service.UserByID(ctx, id)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
