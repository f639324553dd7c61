package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

const (
	defaultDeliveriesLimit = 20
	maxTelemetryBatch      = 500
)

// TelemetryDispatcher is the interface the handler uses to enqueue samples.
type TelemetryDispatcher interface {
	EnqueueBatch(batch []ports.TelemetryInput) (int, error)
}

// DriverHandler serves the driver tablet API.
type DriverHandler struct {
	svc        ports.DriverService
	dispatcher TelemetryDispatcher
}

func NewDriverHandler(svc ports.DriverService, dispatcher TelemetryDispatcher) *DriverHandler {
	return &DriverHandler{svc: svc, dispatcher: dispatcher}
}

// State handles GET /api/driver/state.
//
// @Summary      Get driver state
// @Tags         driver
// @Produce      json
// @Param        driver_id  query     string  false  "Driver to inspect (franchise staff and HQ only)"
// @Success      200        {object}  domain.DriverState
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /api/driver/state [get]
func (h *DriverHandler) State(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	state, err := h.svc.State(c.Request().Context(), driverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// ToggleClock handles POST /api/driver/clock.
//
// @Summary      Clock in or out
// @Tags         driver
// @Produce      json
// @Success      200  {object}  domain.DriverState
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/driver/clock [post]
func (h *DriverHandler) ToggleClock(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	state, err := h.svc.ToggleClock(c.Request().Context(), driverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Telemetry handles POST /api/driver/telemetry. The sample is applied
// synchronously and the resulting state returned.
//
// @Summary      Apply one telemetry sample
// @Tags         driver
// @Accept       json
// @Produce      json
// @Param        body  body      telemetryRequest  true  "Speed and distance to the customer"
// @Success      200   {object}  domain.DriverState
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/driver/telemetry [post]
func (h *DriverHandler) Telemetry(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	var req telemetryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	state, err := h.svc.ApplyTelemetry(c.Request().Context(), toTelemetryInput(driverID, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// TelemetryBatch handles POST /api/driver/telemetry/batch. Samples are queued
// in order and applied by the dispatcher; returns 202.
//
// @Summary      Queue a batch of telemetry samples
// @Tags         driver
// @Accept       json
// @Produce      json
// @Param        body  body      []telemetryRequest  true  "Samples, oldest first"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /api/driver/telemetry/batch [post]
func (h *DriverHandler) TelemetryBatch(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	var reqs []telemetryRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}
	if len(reqs) > maxTelemetryBatch {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("batch cannot exceed %d samples", maxTelemetryBatch))
	}

	inputs := make([]ports.TelemetryInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("sample[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toTelemetryInput(driverID, req))
	}

	n, err := h.dispatcher.EnqueueBatch(inputs)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			fmt.Sprintf("%s: %d of %d samples queued", err.Error(), n, len(inputs)))
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "samples accepted",
		Count:   n,
	})
}

// Simulate handles POST /api/driver/simulate.
//
// @Summary      Simulate telemetry for a mode
// @Description  Demo control: applies canned speed and distance values that land in the requested mode.
// @Tags         driver
// @Accept       json
// @Produce      json
// @Param        body  body      simulateRequest  true  "Target mode"
// @Success      200   {object}  domain.DriverState
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/driver/simulate [post]
func (h *DriverHandler) Simulate(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	var req simulateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	mode, err := domain.ParseDriverMode(req.Mode)
	if err != nil {
		return err
	}

	state, err := h.svc.Simulate(c.Request().Context(), driverID, mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// ToggleChecklistItem handles POST /api/driver/checklist/:id.
//
// @Summary      Toggle a delivery checklist item
// @Tags         driver
// @Produce      json
// @Param        id   path      int  true  "Checklist item ID"
// @Success      200  {object}  domain.DriverState
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/driver/checklist/{id} [post]
func (h *DriverHandler) ToggleChecklistItem(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid checklist item id")
	}

	state, err := h.svc.ToggleChecklistItem(c.Request().Context(), driverID, itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// CompleteDelivery handles POST /api/driver/complete.
//
// @Summary      Complete the current delivery
// @Tags         driver
// @Produce      json
// @Success      200  {object}  domain.DriverState
// @Failure      409  {object}  errorResponse
// @Router       /api/driver/complete [post]
func (h *DriverHandler) CompleteDelivery(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	state, err := h.svc.CompleteDelivery(c.Request().Context(), driverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// Deliveries handles GET /api/driver/deliveries.
//
// @Summary      List completed deliveries
// @Tags         driver
// @Produce      json
// @Param        limit      query     int     false  "Max results (default 20, max 100)"
// @Param        driver_id  query     string  false  "Driver to inspect (franchise staff and HQ only)"
// @Success      200        {object}  deliveriesResponse
// @Failure      400        {object}  errorResponse
// @Router       /api/driver/deliveries [get]
func (h *DriverHandler) Deliveries(c echo.Context) error {
	driverID, err := driverIDFor(c)
	if err != nil {
		return err
	}
	limit := defaultDeliveriesLimit
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
	}

	records, err := h.svc.Deliveries(c.Request().Context(), driverID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeliveriesResponse(records))
}

func toTelemetryInput(driverID string, req telemetryRequest) ports.TelemetryInput {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return ports.TelemetryInput{
		DriverID:           driverID,
		Speed:              *req.Speed,
		DistanceToCustomer: req.DistanceToCustomer,
		Timestamp:          ts,
	}
}
