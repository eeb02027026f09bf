package api

import "github.com/afrodite-backend/corectl/internal/model"

// UpdateProfileRequest is the request body for PUT /api/v1/profile.
type UpdateProfileRequest struct {
	Name       string                        `json:"name"`
	Text       string                        `json:"text"`
	Age        int32                         `json:"age"`
	Attributes []model.ProfileAttributeValue `json:"attributes"`
	Filters    model.SearchFilters           `json:"filters"`
	Location   model.Location                `json:"location"`
}

// SetMediaReferenceRequest is the request body for PUT
// /api/v1/media/:contentId/reference. Security-content referencing is an
// internal pipeline decision (Pipeline.SetSecuritySlot), not user-facing;
// only the profile picture selection is exposed here.
type SetMediaReferenceRequest struct {
	Referenced bool `json:"referenced"`
}

// ResolveModerationRequest is the request body for POST
// /api/v1/admin/moderation/resolve. It echoes back the identifying fields
// GET .../escalated returned, since a moderation item has no stable
// client-facing id (see ModerationItemResponse).
type ResolveModerationRequest struct {
	AccountID       int64  `json:"accountId"`
	ContentType     string `json:"contentType"`
	ReferenceID     string `json:"referenceId"`
	IsInitial       bool   `json:"isInitial"`
	Action          string `json:"action"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// PublishNewsRequest is the request body for POST /api/v1/admin/news.
type PublishNewsRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
