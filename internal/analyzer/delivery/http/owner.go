package http

import (
	"errors"
	"net/http"
	"strings"

	"golang-stock-watchlist/internal/analyzer/dto"
	"golang-stock-watchlist/internal/analyzer/service"
	"golang-stock-watchlist/pkg/common"

	"github.com/labstack/echo/v4"
)

// ownerFrom returns the caller's owner key; no identity means the guest list.
func ownerFrom(c echo.Context) string {
	if email := strings.TrimSpace(c.Request().Header.Get(common.HeaderUserEmail)); email != "" {
		return strings.ToLower(email)
	}
	return strings.ToLower(strings.TrimSpace(c.QueryParam("user_email")))
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, dto.ErrorResponse{Error: msg})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSymbol),
		errors.Is(err, service.ErrInvalidMarket),
		errors.Is(err, service.ErrInvalidTimer),
		errors.Is(err, service.ErrInvalidFilter),
		errors.Is(err, service.ErrDuplicateStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
