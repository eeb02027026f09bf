package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/moderation"
)

const defaultEscalatedPageSize = 50

var (
	errInvalidContentType  = errors.New("invalid content type")
	errInvalidVerdictAction = errors.New("invalid action: must be accept, reject, or escalate")
)

// listEscalatedHandler handles GET /api/v1/admin/moderation/escalated.
func (s *Server) listEscalatedHandler(c *echo.Context) error {
	if s.moderationService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "moderation component not available")
	}

	pageSize := defaultEscalatedPageSize
	if v := c.QueryParam("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	items, err := s.moderationService.ListEscalated(c.Request().Context(), pageSize)
	if err != nil {
		return mapServiceError(err)
	}

	out := make([]ModerationItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ModerationItemResponse{
			AccountID:   int64(item.AccountID),
			ContentType: item.ContentType.String(),
			ReferenceID: item.ReferenceID,
			TextValue:   item.TextValue,
			IsInitial:   item.IsInitial,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// resolveModerationHandler handles POST /api/v1/admin/moderation/resolve.
func (s *Server) resolveModerationHandler(c *echo.Context) error {
	if s.moderationService == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "moderation component not available")
	}

	var req ResolveModerationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	contentType, err := parseContentType(req.ContentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	action, err := parseVerdictAction(req.Action)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	referenceID, err := uuid.Parse(req.ReferenceID)
	if err != nil && req.ReferenceID != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reference id")
	}

	item := moderation.Item{
		AccountID:   model.AccountIdInternal(req.AccountID),
		ContentType: contentType,
		ReferenceID: referenceID,
		IsInitial:   req.IsInitial,
	}

	if err := s.moderationService.Resolve(c.Request().Context(), item, action, req.RejectionReason); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseContentType(s string) (moderation.ContentType, error) {
	switch s {
	case moderation.ContentTypeProfileName.String():
		return moderation.ContentTypeProfileName, nil
	case moderation.ContentTypeProfileText.String():
		return moderation.ContentTypeProfileText, nil
	case moderation.ContentTypeMediaContent.String():
		return moderation.ContentTypeMediaContent, nil
	default:
		return 0, errInvalidContentType
	}
}

func parseVerdictAction(s string) (moderation.VerdictAction, error) {
	switch s {
	case "accept":
		return moderation.VerdictAccept, nil
	case "reject":
		return moderation.VerdictReject, nil
	case "escalate":
		return moderation.VerdictEscalate, nil
	default:
		return 0, errInvalidVerdictAction
	}
}
