package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/app"
)

// setupLogger настраивает формат и уровень логирования терминала.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

func main() {
	// .env удобен при локальной разработке; его отсутствие не ошибка.
	_ = godotenv.Load()

	setupLogger()
	cfg := app.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"branch_id":    cfg.BranchID,
		"terminal_id":  cfg.TerminalID,
	}).Info("запускаем POS-терминал")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("POS-терминал остановлен")
}
