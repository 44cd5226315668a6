// Package main запускает HTTP-сервер фермерского магазина.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milanbouzek/farmshop-system/internal/cache"
	"github.com/milanbouzek/farmshop-system/internal/config"
	"github.com/milanbouzek/farmshop-system/internal/handler"
	"github.com/milanbouzek/farmshop-system/internal/mail"
	"github.com/milanbouzek/farmshop-system/internal/middleware"
	"github.com/milanbouzek/farmshop-system/internal/repository"
	"github.com/milanbouzek/farmshop-system/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	var notifier service.Notifier
	if cfg.SendGridAPIKey != "" {
		notifier = mail.NewSendGridClient(cfg.SendGridAPIKey, cfg.NotifyFrom, cfg.NotifyTo)
	}

	var snapshots service.SnapshotCache
	if cfg.RedisAddr != "" {
		snapshots = cache.NewSnapshotCache(cache.New(cfg.RedisAddr))
	}

	svc := service.NewService(repo, notifier, snapshots, logger)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret, cfg.AdminPassword)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновое обновление кэшированного снимка доступности
	g.Go(func() error {
		svc.StartSnapshotRefresh(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting farmshop server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
