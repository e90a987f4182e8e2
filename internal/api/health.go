// internal/api/health.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 2 * time.Second

// HealthResponse is returned by /health and /ready.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: now(),
		Version:   s.app.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

// ready runs every dependency check; any failure makes the service unready.
func (s *Server) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ready",
		Timestamp: now(),
		Version:   s.app.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Checks:    make(map[string]string, len(s.deps.Checks)),
	}
	status := http.StatusOK
	for _, check := range s.deps.Checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = "failed: " + err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			s.log.Warn("Readiness check failed", map[string]interface{}{"check": check.Name, "error": err})
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	return c.JSON(status, resp)
}
