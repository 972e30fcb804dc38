package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/jwt"
	"ideadrop/internal/lib/logger/sl"
	"ideadrop/internal/repository"
	"ideadrop/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoToken            = errors.New("no refresh token")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	log        *slog.Logger
	users      repository.UserRepository
	codec      *jwt.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(log *slog.Logger, users repository.UserRepository, codec *jwt.Codec, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		log:        log,
		users:      users,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a user and mints an access+refresh pair keyed on the new id.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.TokenPair, models.User, error) {
	const op = "auth_service.Register"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return nil, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.users.SaveUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Password: passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")

			return nil, models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return nil, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{ID: id, Name: name, Email: email}

	pair, err := s.mintPair(user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return nil, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", id.String()))

	return pair, user, nil
}

// Login verifies credentials and mints a fresh token pair. Unknown email and
// wrong password return the identical error so callers can't probe which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, models.User, error) {
	const op = "auth_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login user")

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return nil, models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		log.Error("failed to get user", sl.Err(err))

		return nil, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return nil, models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.mintPair(user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return nil, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully")

	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a new short-lived access token.
// The refresh token itself is not rotated; it stays valid until its natural
// expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, models.User, error) {
	const op = "auth_service.Refresh"

	log := s.log.With(
		slog.String("op", op),
	)

	if refreshToken == "" {
		log.Warn("refresh called without token")

		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		// the classified reason (expired vs malformed vs forged) stays in
		// the logs; callers only see one invalid-token error
		log.Warn("refresh token rejected", sl.Err(err))

		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := s.users.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("refresh token for deleted user", slog.String("user_id", claims.UserID.String()))

			return "", models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		log.Error("failed to get user", sl.Err(err))

		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := s.codec.Mint(user.ID, s.accessTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))

		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("access token refreshed", slog.String("user_id", user.ID.String()))

	return accessToken, user, nil
}

// UserByID resolves the caller identity for the auth middleware.
func (s *AuthService) UserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "auth_service.UserByID"

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// VerifyAccessToken exposes codec verification to the auth middleware.
func (s *AuthService) VerifyAccessToken(token string) (jwt.Claims, error) {
	return s.codec.Verify(token)
}

func (s *AuthService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

func (s *AuthService) mintPair(user models.User) (*models.TokenPair, error) {
	accessToken, err := s.codec.Mint(user.ID, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.codec.Mint(user.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
