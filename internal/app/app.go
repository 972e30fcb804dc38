package app

import (
	"context"
	"log/slog"

	httpapp "ideadrop/internal/app/http"
	"ideadrop/internal/config"
	"ideadrop/internal/lib/jwt"
	appmw "ideadrop/internal/middleware"
	"ideadrop/internal/repository"
	authsvc "ideadrop/internal/services/auth_service"
	ideasvc "ideadrop/internal/services/idea_service"
	"ideadrop/internal/storage/postgresql"
	httprouters "ideadrop/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	storage    *postgresql.Storage
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	codec, err := jwt.NewCodec(cfg.Auth.Secret)
	if err != nil {
		storage.Stop()
		return nil, err
	}

	repo := repository.NewRepository(storage.Pool())

	authService := authsvc.NewAuthService(log, repo.User, codec, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	ideaService := ideasvc.NewIdeaService(log, repo.Idea)

	routers := httprouters.NewRouter(log, cfg.Env, authService, ideaService)
	guard := appmw.AuthGuard(log, authService)

	server := httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, cfg.HTTP.AllowOrigins, routers, guard)

	return &App{
		HTTPServer: server,
		storage:    storage,
	}, nil
}

func (a *App) Stop() {
	a.storage.Stop()
}
