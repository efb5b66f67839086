package api

import (
	"fmt"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

// Futures serves the stored futures snapshot history.
func (h *Handler) Futures(c echo.Context) error {
	req := &models.FuturesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("futures:%s:%d", req.Coin, req.Limit)
	return h.cached(c, key, h.ttl.Futures, func() (interface{}, error) {
		return h.futures.Snapshots(c.Request().Context(), *req)
	})
}

// Liquidation serves estimated liquidation zones around a reference price.
func (h *Handler) Liquidation(c echo.Context) error {
	req := &models.LiquidationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("liquidation:%s:%.2f", req.Coin, req.Price)
	return h.cached(c, key, h.ttl.Futures, func() (interface{}, error) {
		return h.futures.Liquidation(c.Request().Context(), *req)
	})
}
