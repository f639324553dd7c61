package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Pinger is any dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger in the readiness report. Optional dependencies
// are reported but never fail the probe.
type Dependency struct {
	Name     string
	Pinger   Pinger
	Optional bool
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
// Pings MongoDB, Redis and the auth API before declaring the service ready.
type HealthDependenciesHandler struct {
	deps    []Dependency
	timeout time.Duration
}

func NewHealthDependenciesHandler(deps ...Dependency) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: deps, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness godoc
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	type result struct {
		dep Dependency
		err error
	}
	results := make(chan result, len(h.deps))
	for _, dep := range h.deps {
		go func(dep Dependency) {
			results <- result{dep: dep, err: dep.Pinger.Ping(ctx)}
		}(dep)
	}

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true
	failed := 0
	for range h.deps {
		r := <-results
		if r.err == nil {
			deps[r.dep.Name] = dependencyStatus{Status: "ok"}
			continue
		}
		deps[r.dep.Name] = dependencyStatus{Status: "unhealthy", Error: r.err.Error()}
		failed++
		if !r.dep.Optional {
			healthy = false
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	switch {
	case !healthy:
		status = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	case failed > 0:
		status = "degraded"
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
