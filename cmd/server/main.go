package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/example/bakongbot/internal/config"
	"github.com/example/bakongbot/internal/khqr"
	"github.com/example/bakongbot/internal/metrics"
	"github.com/example/bakongbot/internal/routes"
	"github.com/example/bakongbot/internal/services"
	"github.com/example/bakongbot/internal/store"
	"github.com/example/bakongbot/internal/worker"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	st := store.NewStore()
	metrics.TrackPending(st.Len)

	generator := khqr.NewGenerator(khqr.Merchant{
		BankAccount: cfg.BankAccount,
		Name:        cfg.MerchantName,
		City:        cfg.MerchantCity,
		Phone:       cfg.MerchantPhone,
	})

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAPIURL, cfg.ExternalTimeout)
	bakong := services.NewBakongService(cfg.BakongAPIURL, cfg.BakongToken, cfg.ExternalTimeout, log)
	payments := services.NewPaymentService(st, generator, telegram, cfg.Currency, cfg.Expiration, log)
	reconciler := services.NewReconcileService(st, bakong, telegram, log)
	poller := worker.NewPoller(st, reconciler, cfg.CheckInterval, log)

	app := fiber.New(fiber.Config{
		AppName: "Bakong KHQR Bot",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, cfg, routes.Deps{
		Store:      st,
		Payments:   payments,
		Reconciler: reconciler,
		Telegram:   telegram,
		Log:        log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TelegramWebhookURL != "" {
		if err := telegram.SetWebhook(ctx, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret); err != nil {
			log.WithError(err).Warn("Telegram webhook registration failed")
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting server on :%s", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		poller.Run(ctx)
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-quit:
			log.Infof("Received shutdown signal: %v", sig)
			cancel()

			if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}

			return nil
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Info("Server stopped")
}
