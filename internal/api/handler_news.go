package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// publishNewsHandler handles POST /api/v1/admin/news.
func (s *Server) publishNewsHandler(c *echo.Context) error {
	if s.newsService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "news component not available")
	}

	var req PublishNewsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	if err := s.newsService.Publish(c.Request().Context(), req.Title, req.Body); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
