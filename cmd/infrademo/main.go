// Package main implements the infra-demo API server: an HTTP service backed
// by PostgreSQL, Redis, and Kafka, with mail relay and remote log sinks.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/infrademo/infrademo/internal/app"
	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/internal/logsink"
	"github.com/infrademo/infrademo/pkg/logger"
)

func main() {
	// A local .env file fills in anything the environment leaves unset; a
	// missing file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("infra-demo").WithError(err).Fatal("load configuration")
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		logger.NewDefault("infra-demo").WithError(err).Fatal("build logger")
	}
	log = log.WithField("service", "infra-demo")

	sinkCleanup := logsink.Attach(log, cfg.Logging)
	defer sinkCleanup()

	application, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Fatal("start application")
	}
	log.Infof("infra-demo listening on %s", application.Server.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received %s, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}

	log.Info("infra-demo stopped")
}
