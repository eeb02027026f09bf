package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
)

const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

// HealthResponse is returned by GET /health, mirroring the teacher's
// HealthResponse/HealthCheck shape.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Checks  map[string]HealthCheck `json:"checks"`
	Metrics any                    `json:"metrics"`
}

// HealthCheck represents the status of a single component.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthHandler handles GET /health. Only this process's own database
// connectivity is checked; off-process dependencies (LLM, push providers)
// are excluded so an orchestrator never restarts a healthy process over
// an unhealthy third party, mirroring the teacher's healthHandler
// rationale.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := healthStatusHealthy

	if err := s.dbClient.Ping(reqCtx); err != nil {
		status = healthStatusUnhealthy
		checks["database"] = HealthCheck{Status: healthStatusUnhealthy, Message: err.Error()}
	} else {
		checks["database"] = HealthCheck{Status: healthStatusHealthy}
	}

	checks["cache"] = HealthCheck{Status: healthStatusHealthy, Message: fmt.Sprintf("%d accounts loaded", s.cache.Len())}

	httpStatus := http.StatusOK
	if status == healthStatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	var snapshot any
	if s.metrics != nil {
		snapshot = s.metrics.Snapshot()
	}

	return c.JSON(httpStatus, &HealthResponse{
		Status:  status,
		Checks:  checks,
		Metrics: snapshot,
	})
}
