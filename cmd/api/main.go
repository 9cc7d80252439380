package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/config"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/pg"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/handlers"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/router"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/logging"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/session"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/token"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/tracking"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/users"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.GetConfig()
	logging.SetupLogger(cfg.Environment)
	slog.Info("Loaded environment", "environment", cfg.Environment)

	switch cfg.Environment {
	case "development":
		gin.SetMode(gin.DebugMode)
	case "production":
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := pg.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := pg.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	maker := token.NewMaker(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL())
	store := session.NewStore(db, cfg.RefreshTokenTTL())
	userSvc := users.NewService(db)
	sessions := session.NewService(userSvc, store, maker)
	trackingSvc := tracking.NewService(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := session.NewSweeper(store, cfg.TokenSweepInterval, cfg.TokenSweepRetention)
	go sweeper.Run(ctx)

	r := router.New(router.Deps{
		Config:   cfg,
		Maker:    maker,
		Auth:     handlers.NewAuthHandler(sessions, cfg),
		Tracking: handlers.NewTrackingHandler(trackingSvc),
		Users:    handlers.NewUserHandler(userSvc),
		Health:   handlers.NewHealthHandler(db),
	})

	slog.Info("Starting server", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
