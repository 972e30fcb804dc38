package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/jwt"
	"ideadrop/internal/lib/logger/sl"
	"ideadrop/internal/metrics"
	auth "ideadrop/internal/services/auth_service"
	"ideadrop/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const identityKey = "identity"

type TokenVerifier interface {
	VerifyAccessToken(token string) (jwt.Claims, error)
	UserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
}

// AuthGuard gates protected routes. Every rejection is a 401; the specific
// reason (missing header, expired/forged/malformed token, deleted user)
// only reaches the logs.
func AuthGuard(log *slog.Logger, verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const op = "middleware.AuthGuard"

			log := log.With(slog.String("op", op))

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				log.Warn("request without bearer token", slog.String("path", c.Path()))
				metrics.AuthFailuresTotal.WithLabelValues("no_token").Inc()

				return c.JSON(http.StatusUnauthorized, response.Msg("Not authorized, no token"))
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				// sl.Err carries the classified cause: expired vs malformed vs forged
				log.Warn("access token rejected", sl.Err(err))
				metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()

				return c.JSON(http.StatusUnauthorized, response.Msg("Not authorized, token failed"))
			}

			user, err := verifier.UserByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, auth.ErrUserNotFound) {
					log.Warn("token for unknown user", slog.String("user_id", claims.UserID.String()))
					metrics.AuthFailuresTotal.WithLabelValues("user_not_found").Inc()

					return c.JSON(http.StatusUnauthorized, response.Msg("Not authorized, user not found"))
				}

				log.Error("failed to resolve user", sl.Err(err))

				return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
			}

			SetIdentity(c, models.Identity{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
			})

			return next(c)
		}
	}
}

// SetIdentity attaches the verified caller to the request context.
func SetIdentity(c echo.Context, identity models.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFromContext returns the caller stored by AuthGuard.
func IdentityFromContext(c echo.Context) (models.Identity, bool) {
	identity, ok := c.Get(identityKey).(models.Identity)
	return identity, ok
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrInvalidSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
