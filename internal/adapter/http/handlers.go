package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CheckFunc probes one dependency for the readiness endpoint.
type CheckFunc func(ctx context.Context) error

type Handler struct {
	checks map[string]CheckFunc
}

func NewHandler(checks map[string]CheckFunc) *Handler {
	return &Handler{checks: checks}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Ready reports 503 with the failing dependencies when any probe fails.
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	failing := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failing[name] = err.Error()
		}
	}
	if len(failing) > 0 {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "unavailable",
			"failing": failing,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ready"})
}
