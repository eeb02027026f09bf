package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
)

// createAccountHandler handles POST /api/v1/accounts. Unauthenticated: it
// is the one endpoint that issues the bootstrap access token a new caller
// needs for every other request (spec.md §4.A account lifecycle).
func (s *Server) createAccountHandler(c *echo.Context) error {
	if s.accountService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "account component not available")
	}

	row, err := s.accountService.Create(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, &AccountResponse{
		AccountID:   row.AccountID.String(),
		AccessToken: string(row.Token),
	})
}

// requestDeletionHandler handles POST /api/v1/accounts/deletion.
func (s *Server) requestDeletionHandler(c *echo.Context) error {
	if s.accountService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "account component not available")
	}

	entry := accountFromContext(c)
	current := currentAccountState(entry)
	if err := s.accountService.RequestDeletion(c.Request().Context(), entry.AccountIdInternal(), current); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// cancelDeletionHandler handles DELETE /api/v1/accounts/deletion.
func (s *Server) cancelDeletionHandler(c *echo.Context) error {
	if s.accountService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "account component not available")
	}

	entry := accountFromContext(c)
	current := currentAccountState(entry)
	if err := s.accountService.CancelDeletion(c.Request().Context(), entry.AccountIdInternal(), current); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func currentAccountState(entry *cache.Entry) model.AccountState {
	var shared cache.SharedState
	entry.Read(func(e *cache.Entry) { shared = e.Shared() })
	return shared.AccountState
}
