package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/jwt"
	auth "ideadrop/internal/services/auth_service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	codec *jwt.Codec
	users map[uuid.UUID]models.User
	err   error
}

func (v *stubVerifier) VerifyAccessToken(token string) (jwt.Claims, error) {
	return v.codec.Verify(token)
}

func (v *stubVerifier) UserByID(_ context.Context, userID uuid.UUID) (models.User, error) {
	if v.err != nil {
		return models.User{}, v.err
	}

	user, ok := v.users[userID]
	if !ok {
		return models.User{}, auth.ErrUserNotFound
	}

	return user, nil
}

func newGuardTest(t *testing.T, verifier *stubVerifier) (*echo.Echo, echo.HandlerFunc) {
	t.Helper()

	e := echo.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := AuthGuard(log, verifier)(func(c echo.Context) error {
		identity, ok := IdentityFromContext(c)
		require.True(t, ok)

		return c.JSON(http.StatusOK, identity)
	})

	return e, handler
}

func doRequest(e *echo.Echo, handler echo.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ideas", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()

	_ = handler(e.NewContext(req, rec))

	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Message
}

func TestAuthGuard(t *testing.T) {
	codec, err := jwt.NewCodec("guard-test-secret")
	require.NoError(t, err)

	user := models.User{ID: uuid.New(), Name: "Tester", Email: "t@example.com"}

	verifier := &stubVerifier{
		codec: codec,
		users: map[uuid.UUID]models.User{user.ID: user},
	}

	t.Run("valid token passes identity to the handler", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		token, err := codec.Mint(user.ID, time.Minute)
		require.NoError(t, err)

		rec := doRequest(e, handler, "Bearer "+token)
		require.Equal(t, http.StatusOK, rec.Code)

		var identity models.Identity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
		assert.Equal(t, user.ID, identity.ID)
		assert.Equal(t, user.Email, identity.Email)
	})

	t.Run("no authorization header", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		rec := doRequest(e, handler, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, no token", messageOf(t, rec))
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		rec := doRequest(e, handler, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, no token", messageOf(t, rec))
	})

	t.Run("bearer with empty token", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		rec := doRequest(e, handler, "Bearer ")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, no token", messageOf(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		rec := doRequest(e, handler, "Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, token failed", messageOf(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		token, err := codec.Mint(user.ID, -time.Hour)
		require.NoError(t, err)

		rec := doRequest(e, handler, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, token failed", messageOf(t, rec))
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		other, err := jwt.NewCodec("other-secret")
		require.NoError(t, err)

		token, err := other.Mint(user.ID, time.Minute)
		require.NoError(t, err)

		rec := doRequest(e, handler, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, token failed", messageOf(t, rec))
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		e, handler := newGuardTest(t, verifier)

		token, err := codec.Mint(uuid.New(), time.Minute)
		require.NoError(t, err)

		rec := doRequest(e, handler, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authorized, user not found", messageOf(t, rec))
	})

	t.Run("store failure is a 500, not a 401", func(t *testing.T) {
		broken := &stubVerifier{codec: codec, err: errors.New("db down")}
		e, handler := newGuardTest(t, broken)

		token, err := codec.Mint(user.ID, time.Minute)
		require.NoError(t, err)

		rec := doRequest(e, handler, "Bearer "+token)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestIdentityFromContext_Absent(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := IdentityFromContext(c)
	assert.False(t, ok)
}
