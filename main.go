package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"rrrgame/internal/auth"
	"rrrgame/internal/config"
	"rrrgame/internal/game"
	"rrrgame/internal/handlers"
	"rrrgame/internal/logging"
	"rrrgame/internal/server"
	"rrrgame/internal/storage"
	"rrrgame/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}
	logging.Setup(cfg.LogLevel)

	var store storage.Store
	if cfg.DatabaseDSN != "" {
		db, err := storage.Open(cfg.DatabaseDSN)
		if err != nil {
			logrus.WithError(err).Fatal("connecting to database")
		}
		store = storage.NewDBStore(db)
	} else {
		logrus.Warn("no database configured, game state is in-memory only")
		store = storage.NewMemoryStore()
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	userSvc := users.NewService(store, tokens)
	gameSvc := game.NewService(store, userSvc)
	h := handlers.New(userSvc, gameSvc, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"commit":  commit,
		"built":   buildDate,
		"workers": cfg.Workers,
	}).Info("starting rrr-game server")

	if err := server.New(h, cfg.Workers).ListenAndServe(ctx, cfg.Addr); err != nil {
		logrus.WithError(err).Error("server stopped")
		os.Exit(1)
	}
	logrus.Info("shut down cleanly")
}
