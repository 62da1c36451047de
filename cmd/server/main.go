package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/realtime"
	"github.com/jestfly/community-backend/internal/router"
	"github.com/jestfly/community-backend/pkg/config"
	"github.com/jestfly/community-backend/pkg/firebase"
	"github.com/jestfly/community-backend/pkg/logger"
	"github.com/jestfly/community-backend/validators"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("initializing backing stores", zap.Error(err))
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var push *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		push, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
		if err != nil {
			log.Warn("push delivery disabled", zap.Error(err))
		}
	}

	hub := realtime.NewHub(log)
	notifier := realtime.NewNotifier(db.Redis, log)
	if err := notifier.StartSubscriber(ctx, hub); err != nil {
		log.Fatal("starting bridge subscriber", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	if err := router.SetupRoutes(e, db, cfg, hub, notifier, push, log); err != nil {
		log.Fatal("setting up routes", zap.Error(err))
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info("server stopped", zap.Error(err))
		}
	}()
	log.Info("server listening", zap.String("port", cfg.Port))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutting down server", zap.Error(err))
	}
}
