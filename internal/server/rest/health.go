package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct{ db Pinger }

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return JSON(c, http.StatusOK, fiber.Map{"status": "ok"})
}

// Ready pings the store with a one second budget.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.db == nil {
		return JSON(c, http.StatusOK, fiber.Map{"status": "ready"})
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return JSON(c, http.StatusServiceUnavailable, fiber.Map{"status": "not_ready"})
	}
	return JSON(c, http.StatusOK, fiber.Map{"status": "ready"})
}
