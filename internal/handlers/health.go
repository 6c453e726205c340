package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bakongbot/internal/store"
)

// HealthHandler reports process liveness.
type HealthHandler struct {
	store *store.Store
}

// NewHealthHandler builds a HealthHandler instance.
func NewHealthHandler(st *store.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

// Healthz answers liveness probes with the current tracking load.
func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"tracked": h.store.Len(),
	})
}
