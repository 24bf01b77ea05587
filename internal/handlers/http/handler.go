package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gabapcia/faucet/internal/faucet"

	"github.com/labstack/echo/v4"
)

type handler struct {
	svc faucet.Service
}

type claimRequest struct {
	Address string `json:"address"`
}

type claimResponse struct {
	Success     bool   `json:"success"`
	TxReference string `json:"txReference"`
}

type statusResponse struct {
	Claimed bool `json:"claimed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusCode maps a faucet error to the response status.
// Anything that is not the caller's fault is a 500.
func statusCode(err error) int {
	switch {
	case errors.Is(err, faucet.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, faucet.ErrAlreadyClaimed):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// claim handles POST /claim-faucet with body {"address": "0x..."}.
func (h *handler) claim(c echo.Context) error {
	var req claimRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
	}

	receipt, err := h.svc.Claim(c.Request().Context(), req.Address)
	if err != nil {
		return c.JSON(statusCode(err), errorResponse{Error: faucet.Reason(err)})
	}

	return c.JSON(http.StatusOK, claimResponse{
		Success:     true,
		TxReference: receipt.TxReference,
	})
}

// status handles GET /claim-faucet?address=0x...
func (h *handler) status(c echo.Context) error {
	claimed, err := h.svc.Status(c.Request().Context(), c.QueryParam("address"))
	if err != nil {
		return c.JSON(statusCode(err), errorResponse{Error: faucet.Reason(err)})
	}

	return c.JSON(http.StatusOK, statusResponse{Claimed: claimed})
}

// health handles GET /healthz.
func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
