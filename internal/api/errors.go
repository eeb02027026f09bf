package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/service"
)

// mapServiceError maps a service-layer error to an HTTP error response,
// per the status table in spec.md §7. Generalizes the teacher's
// mapServiceError (four sentinels, no validation/state/rate-limit/
// upstream distinctions) to the fuller set internal/service exposes.
func mapServiceError(err error) *echo.HTTPError {
	if service.IsValidationError(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, cache.ErrNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "not permitted")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrStateNotAcceptable):
		return echo.NewHTTPError(http.StatusNotAcceptable, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "resource conflict")
	case errors.Is(err, service.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, service.ErrProviderTransient), errors.Is(err, service.ErrProviderPermanent):
		slog.Error("upstream provider failure", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "upstream provider failure")
	}

	slog.Error("unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
