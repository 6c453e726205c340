package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/example/bakongbot/internal/config"
	"github.com/example/bakongbot/internal/handlers"
	"github.com/example/bakongbot/internal/middleware"
	"github.com/example/bakongbot/internal/services"
	"github.com/example/bakongbot/internal/store"
)

// Deps carries the shared components the HTTP layer is built on. They are
// constructed in main because the reconciler is shared with the poller.
type Deps struct {
	Store      *store.Store
	Payments   *services.PaymentService
	Reconciler *services.ReconcileService
	Telegram   *services.TelegramService
	Log        *logrus.Logger
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, deps Deps) {
	telegramHandler := handlers.NewTelegramHandler(cfg, deps.Store, deps.Payments, deps.Reconciler, deps.Telegram, deps.Log)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	app.Use(middleware.MetricsMiddleware())

	// Telegram webhook routes
	telegram := app.Group("/telegram", middleware.TelegramAuthMiddleware(cfg.TelegramWebhookSecret))
	telegram.Post("/webhook", telegramHandler.HandleWebhook)

	app.Get("/healthz", healthHandler.Healthz)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
