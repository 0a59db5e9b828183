package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/titan-coffee/internal/app"
	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(level, format string) {
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// run возвращает код выхода процесса.
func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("failed to load .env")
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"grpc_addr":    cfg.GRPCAddr,
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
	}).Infof("запускаем %s", cfg.AppName)

	err = app.Run(ctx, cfg)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info("сервис остановлен")
		return 0
	case errors.Is(err, domain.ErrStartupFailure):
		log.WithError(err).Error("не удалось подключиться к хранилищу, завершаем работу")
		return 1
	default:
		log.WithError(err).Error("приложение завершилось с ошибкой")
		return 1
	}
}

func main() {
	os.Exit(run())
}
