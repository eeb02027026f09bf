package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/afrodite-backend/corectl/internal/model"
)

// getProfileHandler handles GET /api/v1/profile.
func (s *Server) getProfileHandler(c *echo.Context) error {
	if s.profileService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "profile component not available")
	}

	entry := accountFromContext(c)
	profile, ok, err := s.profileService.Get(c.Request().Context(), entry.AccountIdInternal())
	if err != nil {
		return mapServiceError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "profile not set")
	}
	return c.JSON(http.StatusOK, newProfileResponse(profile))
}

// updateProfileHandler handles PUT /api/v1/profile.
func (s *Server) updateProfileHandler(c *echo.Context) error {
	if s.profileService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "profile component not available")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	entry := accountFromContext(c)
	next := model.Profile{
		Name:       req.Name,
		Text:       req.Text,
		Age:        req.Age,
		Attributes: req.Attributes,
		Filters:    req.Filters,
		Location:   req.Location,
	}

	saved, err := s.profileService.Update(c.Request().Context(), entry.AccountIdInternal(), next)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, newProfileResponse(saved))
}
