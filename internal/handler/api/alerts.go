package api

import (
	"fmt"
	"net/http"
	"strconv"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Alerts lists persisted alerts, unacknowledged only unless acked=true.
func (h *Handler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("alerts:%s:%s:%s:%s:%d:%t",
		req.Coin, req.Severity, req.From, req.To, req.Limit, req.Acked)
	return h.cached(c, key, h.ttl.Alerts, func() (interface{}, error) {
		return h.alerts.List(c.Request().Context(), *req)
	})
}

// AlertSummary counts alerts by severity and kind over the trailing days.
func (h *Handler) AlertSummary(c echo.Context) error {
	req := &models.AlertSummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("alertsummary:%s:%d", req.Coin, req.Days)
	return h.cached(c, key, h.ttl.Alerts, func() (interface{}, error) {
		return h.alerts.Summary(c.Request().Context(), *req)
	})
}

// Scan runs the detection passes for one coin and persists new alerts.
func (h *Handler) Scan(c echo.Context) error {
	if h.limited(c, "scan", 5, 0.2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "scan rate limited")
	}
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scanner.Scan(c.Request().Context(), req.Coin, req.LookbackDays)
	if err != nil {
		h.log.Error("scan failed", applogger.String("coin", req.Coin), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Acknowledge marks one alert as handled.
func (h *Handler) Acknowledge(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_BAD_ID",
			Field:   "id",
			Message: "id must be a positive integer",
		}})
	}

	if err := h.alerts.Acknowledge(c.Request().Context(), id); err != nil {
		h.log.Error("acknowledge failed", applogger.Int64("id", id), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"id": id, "acknowledged": true})
}
