package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pairview/pairview/internal/application/config"
	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/application/metric"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
	"github.com/pairview/pairview/internal/infra/adapters/postgres"
	"github.com/pairview/pairview/internal/infra/adapters/postgres/repository"
	"github.com/pairview/pairview/internal/infra/ports/http/handlers"
	"github.com/pairview/pairview/internal/infra/ports/http/server"
	"github.com/pairview/pairview/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	userRepo := repository.NewUserRepo(dbConn)
	sessionRepo := repository.NewSessionRepo(dbConn)
	chatRepo := repository.NewChatMessageRepo(dbConn)

	connRepo := memory.NewConnectionRepository()
	roomRepo := memory.NewRoomRepository()
	socketRepo := memory.NewSocketRepository()

	userUsecase := usecase.NewUserUsecase([]byte(cfg.JWTSecret), userRepo, connRepo)
	sessionUsecase := usecase.NewSessionUsecase(sessionRepo, chatRepo)
	roomUsecase := usecase.NewRoomUsecase(connRepo, roomRepo, socketRepo)
	signalingUsecase := usecase.NewSignalingUsecase(connRepo, roomRepo, socketRepo, chatRepo, sessionRepo)

	authHandler := handlers.NewAuthHandler(userUsecase)
	sessionHandler := handlers.NewSessionHandler(sessionUsecase)
	iceHandler := handlers.NewIceHandler(cfg)
	wsHandler := handlers.NewWebSocketHandler(cfg, roomUsecase, signalingUsecase, socketRepo)

	echoSrv := server.New(cfg, authHandler, sessionHandler, iceHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
