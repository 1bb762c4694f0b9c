package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler registers one group of routes on the server.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// HealthChecker is a backend /healthz reports on.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type namedCheck struct {
	name  string
	check HealthChecker
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []namedCheck, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		res := HealthStatus{Status: "ok"}
		for _, hc := range checks {
			if err := hc.check.Health(ctx); err != nil {
				if res.Checks == nil {
					res.Checks = make(map[string]string)
				}
				res.Status = "degraded"
				res.Checks[hc.name] = err.Error()
			}
		}
		if res.Status != "ok" {
			return DataResponse(c, http.StatusServiceUnavailable, res)
		}
		return SuccessResponse(c, res)
	}
}
