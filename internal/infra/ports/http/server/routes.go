package server

import (
	"github.com/labstack/echo/v4"

	"github.com/pairview/pairview/internal/application/config"
	"github.com/pairview/pairview/internal/infra/ports/http/handlers"
	"github.com/pairview/pairview/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	iceHandler *handlers.IceHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/me", authHandler.GetMe)

			v1.GET("/ice", iceHandler.IceServers)

			v1.GET("/ws", wsHandler.Handle)

			v1.POST("/sessions", sessionHandler.CreateSession)
			v1.GET("/sessions", sessionHandler.ListSessions)
			v1.GET("/sessions/:roomId", sessionHandler.GetSession)
			v1.POST("/join", sessionHandler.JoinSession)

			v1.GET("/users/online", authHandler.GetOnlineUsers)
		}
	}

	return e
}
