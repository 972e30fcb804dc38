package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appmw "ideadrop/internal/middleware"
	httprouters "ideadrop/internal/transport/http"

	_ "ideadrop/docs"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	guard   echo.MiddlewareFunc
	host    string
	port    string
}

func New(log *slog.Logger, host, port string, allowOrigins []string, routers *httprouters.Routers, guard echo.MiddlewareFunc) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Validator = &CustomValidator{validator: validator.New()}

	if len(allowOrigins) > 0 {
		// credentials must be allowed for the refresh-token cookie
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     allowOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		}))
	} else {
		e.Use(middleware.CORS())
	}

	e.Use(middleware.Recover())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	e.Use(appmw.PrometheusMetrics)

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		guard:   guard,
		host:    host,
		port:    port,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	api := s.e.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.routers.Register)
			authGroup.POST("/login", s.routers.Login)
			authGroup.POST("/refresh", s.routers.Refresh)
			authGroup.POST("/logout", s.routers.Logout)
		}

		ideaGroup := api.Group("/ideas")
		{
			ideaGroup.GET("", s.routers.ListIdeas)
			ideaGroup.GET("/:id", s.routers.GetIdea)
			ideaGroup.POST("", s.routers.CreateIdea, s.guard)
			ideaGroup.PUT("/:id", s.routers.UpdateIdea, s.guard)
			ideaGroup.DELETE("/:id", s.routers.DeleteIdea, s.guard)
		}
	}

	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}
