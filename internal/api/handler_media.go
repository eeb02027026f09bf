package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/afrodite-backend/corectl/internal/model"
)

// listMediaHandler handles GET /api/v1/media.
func (s *Server) listMediaHandler(c *echo.Context) error {
	if s.mediaService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "media component not available")
	}

	entry := accountFromContext(c)
	items, err := s.mediaService.List(c.Request().Context(), entry.AccountIdInternal())
	if err != nil {
		return mapServiceError(err)
	}

	out := make([]MediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, newMediaResponse(m))
	}
	return c.JSON(http.StatusOK, out)
}

// uploadMediaHandler handles POST /api/v1/media/:slot. The body is raw
// `image/jpeg` bytes, per spec.md §6 ("Content endpoints accept raw bytes
// with image/jpeg").
func (s *Server) uploadMediaHandler(c *echo.Context) error {
	if s.mediaService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "media component not available")
	}

	slotNum, err := strconv.Atoi(c.Param("slot"))
	if err != nil || !model.ValidSlot(slotNum) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot")
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body")
	}

	entry := accountFromContext(c)
	state, err := s.mediaService.Upload(entry.AccountIdInternal(), model.ContentSlot(slotNum), raw, true)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusAccepted, &ProcessingStateResponse{
		ProcessingID:  state.ProcessingID,
		Phase:         int(state.Phase),
		QueuePosition: state.QueuePosition,
		ContentID:     state.ContentID,
	})
}

// deleteMediaHandler handles DELETE /api/v1/media/:contentId.
func (s *Server) deleteMediaHandler(c *echo.Context) error {
	if s.mediaService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "media component not available")
	}

	contentID, err := uuid.Parse(c.Param("contentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid content id")
	}

	entry := accountFromContext(c)
	if err := s.mediaService.Delete(c.Request().Context(), entry.AccountIdInternal(), contentID); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// setMediaReferenceHandler handles PUT /api/v1/media/:contentId/reference.
func (s *Server) setMediaReferenceHandler(c *echo.Context) error {
	if s.mediaService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "media component not available")
	}

	contentID, err := uuid.Parse(c.Param("contentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid content id")
	}

	var req SetMediaReferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	entry := accountFromContext(c)
	if err := s.mediaService.SetProfileReference(c.Request().Context(), entry.AccountIdInternal(), contentID, req.Referenced); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
