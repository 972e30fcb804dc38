package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ideadrop/internal/domain/models"
	"ideadrop/internal/lib/logger/sl"
	appmw "ideadrop/internal/middleware"
	"ideadrop/internal/transport/http/dto"
	"ideadrop/internal/transport/http/dto/request"
	"ideadrop/internal/transport/http/dto/response"
	auth "ideadrop/internal/services/auth_service"
	idea "ideadrop/internal/services/idea_service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RefreshTokenCookie is the one wire-format detail browsers depend on;
// name and attributes must stay stable.
const RefreshTokenCookie = "refreshToken"

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.TokenPair, models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, models.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, models.User, error)
	RefreshTokenTTL() time.Duration
}

type IdeaService interface {
	CreateIdea(ctx context.Context, ownerID uuid.UUID, req dto.IdeaInput) (*models.Idea, error)
	GetIdea(ctx context.Context, ideaID uuid.UUID) (*models.Idea, error)
	ListIdeas(ctx context.Context, limit int, tags []string) ([]models.Idea, error)
	UpdateIdea(ctx context.Context, ideaID, callerID uuid.UUID, req dto.IdeaInput) (*models.Idea, error)
	DeleteIdea(ctx context.Context, ideaID, callerID uuid.UUID) error
}

type Routers struct {
	log         *slog.Logger
	env         string
	AuthService AuthService
	IdeaService IdeaService
}

func NewRouter(log *slog.Logger, env string, authService AuthService, ideaService IdeaService) *Routers {
	return &Routers{
		log:         log,
		env:         env,
		AuthService: authService,
		IdeaService: ideaService,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account, returns an access token and sets the refresh-token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "registration data"
// @Success 201 {object} response.Auth
// @Failure 400 {object} response.Message
// @Router /api/auth/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(slog.String("op", op))

	var req request.RegisterRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Msg("All fields are required"))
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid register request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Msg("All fields are required"))
	}

	pair, user, err := r.AuthService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return c.JSON(http.StatusBadRequest, response.Msg("User already exists"))
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	r.setRefreshCookie(c, pair.RefreshToken)

	return c.JSON(http.StatusCreated, response.NewAuth(pair.AccessToken, user))
}

// Login godoc
// @Summary Login a user
// @Description Verifies credentials, returns an access token and sets the refresh-token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "login data"
// @Success 201 {object} response.Auth
// @Failure 400 {object} response.Message
// @Failure 401 {object} response.Message
// @Router /api/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Msg("Email and password are required"))
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Msg("Email and password are required"))
	}

	pair, user, err := r.AuthService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, response.Msg("Invalid credentials"))
		}

		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	r.setRefreshCookie(c, pair.RefreshToken)

	return c.JSON(http.StatusCreated, response.NewAuth(pair.AccessToken, user))
}

// Refresh godoc
// @Summary Exchange the refresh-token cookie for a new access token
// @Tags auth
// @Produce json
// @Success 200 {object} response.Auth
// @Failure 401 {object} response.Message
// @Router /api/auth/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(slog.String("op", op))

	var refreshToken string
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	accessToken, user, err := r.AuthService.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoToken):
			return c.JSON(http.StatusUnauthorized, response.Msg("No refresh token"))
		case errors.Is(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusUnauthorized, response.Msg("No user"))
		case errors.Is(err, auth.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, response.Msg("Invalid refresh token"))
		}

		log.Error("refresh failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	// keep the cookie fresh on every success path
	r.setRefreshCookie(c, refreshToken)

	return c.JSON(http.StatusOK, response.NewAuth(accessToken, user))
}

// Logout godoc
// @Summary Logout and clear the refresh-token cookie
// @Description Stateless: already-issued tokens stay valid until expiry.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Message
// @Router /api/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	r.clearRefreshCookie(c)

	return c.JSON(http.StatusOK, response.Msg("Logged out successfully"))
}

// ListIdeas godoc
// @Summary List ideas, newest first
// @Tags ideas
// @Produce json
// @Param _limit query int false "max number of ideas"
// @Param tag query []string false "filter by tag"
// @Success 200 {array} models.Idea
// @Router /api/ideas [get]
func (r *Routers) ListIdeas(c echo.Context) error {
	const op = "http.routers.ListIdeas"

	log := r.log.With(slog.String("op", op))

	limit, _ := strconv.Atoi(c.QueryParam("_limit"))
	tags := c.QueryParams()["tag"]

	ideas, err := r.IdeaService.ListIdeas(c.Request().Context(), limit, tags)
	if err != nil {
		log.Error("failed to list ideas", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	return c.JSON(http.StatusOK, ideas)
}

// GetIdea godoc
// @Summary Get a single idea
// @Tags ideas
// @Produce json
// @Param id path string true "idea id" format(uuid)
// @Success 200 {object} models.Idea
// @Failure 404 {object} response.Message
// @Router /api/ideas/{id} [get]
func (r *Routers) GetIdea(c echo.Context) error {
	const op = "http.routers.GetIdea"

	log := r.log.With(slog.String("op", op))

	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, response.Msg("Idea not found"))
	}

	found, err := r.IdeaService.GetIdea(c.Request().Context(), ideaID)
	if err != nil {
		if errors.Is(err, idea.ErrIdeaNotFound) {
			return c.JSON(http.StatusNotFound, response.Msg("Idea not found"))
		}

		log.Error("failed to get idea", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	return c.JSON(http.StatusOK, found)
}

// CreateIdea godoc
// @Summary Create an idea
// @Tags ideas
// @Accept json
// @Produce json
// @Param request body dto.IdeaInput true "idea data"
// @Success 201 {object} models.Idea
// @Failure 400 {object} response.Message
// @Failure 401 {object} response.Message
// @Security BearerAuth
// @Router /api/ideas [post]
func (r *Routers) CreateIdea(c echo.Context) error {
	const op = "http.routers.CreateIdea"

	log := r.log.With(slog.String("op", op))

	identity, ok := appmw.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Msg("Not authorized, no token"))
	}

	var req dto.IdeaInput

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Msg("Title, summary and description are required"))
	}

	created, err := r.IdeaService.CreateIdea(c.Request().Context(), identity.ID, req)
	if err != nil {
		if errors.Is(err, idea.ErrRequiredFields) {
			return c.JSON(http.StatusBadRequest, response.Msg("Title, summary and description are required"))
		}

		log.Error("failed to create idea", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdateIdea godoc
// @Summary Update an owned idea
// @Tags ideas
// @Accept json
// @Produce json
// @Param id path string true "idea id" format(uuid)
// @Param request body dto.IdeaInput true "idea data"
// @Success 200 {object} models.Idea
// @Failure 400 {object} response.Message
// @Failure 403 {object} response.Message
// @Failure 404 {object} response.Message
// @Security BearerAuth
// @Router /api/ideas/{id} [put]
func (r *Routers) UpdateIdea(c echo.Context) error {
	const op = "http.routers.UpdateIdea"

	log := r.log.With(slog.String("op", op))

	identity, ok := appmw.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Msg("Not authorized, no token"))
	}

	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, response.Msg("Idea not found"))
	}

	var req dto.IdeaInput

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Msg("Title, summary and description are required"))
	}

	updated, err := r.IdeaService.UpdateIdea(c.Request().Context(), ideaID, identity.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, idea.ErrIdeaNotFound):
			return c.JSON(http.StatusNotFound, response.Msg("Idea not found"))
		case errors.Is(err, idea.ErrNotOwner):
			return c.JSON(http.StatusForbidden, response.Msg("Not authorized to update this idea"))
		case errors.Is(err, idea.ErrRequiredFields):
			return c.JSON(http.StatusBadRequest, response.Msg("Title, summary and description are required"))
		}

		log.Error("failed to update idea", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteIdea godoc
// @Summary Delete an owned idea
// @Tags ideas
// @Produce json
// @Param id path string true "idea id" format(uuid)
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Message
// @Failure 404 {object} response.Message
// @Security BearerAuth
// @Router /api/ideas/{id} [delete]
func (r *Routers) DeleteIdea(c echo.Context) error {
	const op = "http.routers.DeleteIdea"

	log := r.log.With(slog.String("op", op))

	identity, ok := appmw.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Msg("Not authorized, no token"))
	}

	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, response.Msg("Idea not found"))
	}

	if err := r.IdeaService.DeleteIdea(c.Request().Context(), ideaID, identity.ID); err != nil {
		switch {
		case errors.Is(err, idea.ErrIdeaNotFound):
			return c.JSON(http.StatusNotFound, response.Msg("Idea not found"))
		case errors.Is(err, idea.ErrNotOwner):
			return c.JSON(http.StatusForbidden, response.Msg("Not authorized to delete this idea"))
		}

		log.Error("failed to delete idea", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.Msg("Internal server error"))
	}

	return c.JSON(http.StatusOK, response.Msg("Idea deleted successfully"))
}

func (r *Routers) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(r.refreshCookie(token, int(r.AuthService.RefreshTokenTTL().Seconds())))
}

func (r *Routers) clearRefreshCookie(c echo.Context) {
	c.SetCookie(r.refreshCookie("", -1))
}

// refreshCookie reproduces the browser contract exactly: HTTP-only,
// secure + SameSite=None in prod, SameSite=Lax otherwise.
func (r *Routers) refreshCookie(token string, maxAge int) *http.Cookie {
	prod := r.env == "prod"

	sameSite := http.SameSiteLaxMode
	if prod {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   prod,
		SameSite: sameSite,
	}
}
