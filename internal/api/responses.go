package api

import (
	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/internal/model"
)

// AccountResponse is returned by POST /api/v1/accounts.
type AccountResponse struct {
	AccountID   string `json:"accountId"`
	AccessToken string `json:"accessToken"`
}

// ProfileResponse is returned by GET/PUT /api/v1/profile.
type ProfileResponse struct {
	Name       string                        `json:"name"`
	Text       string                        `json:"text"`
	Age        int32                         `json:"age"`
	Attributes []model.ProfileAttributeValue `json:"attributes"`
	Filters    model.SearchFilters           `json:"filters"`
	Location   model.Location                `json:"location"`
	Version    uuid.UUID                     `json:"version"`
}

func newProfileResponse(p model.Profile) ProfileResponse {
	return ProfileResponse{
		Name:       p.Name,
		Text:       p.Text,
		Age:        p.Age,
		Attributes: p.Attributes,
		Filters:    p.Filters,
		Location:   p.Location,
		Version:    p.Version,
	}
}

// MediaResponse is one entry of GET /api/v1/media's array response.
type MediaResponse struct {
	ContentID                  uuid.UUID `json:"contentId"`
	Slot                       uint8     `json:"slot"`
	State                      string    `json:"state"`
	ReferencedAsProfileContent bool      `json:"referencedAsProfileContent"`
	ReferencedAsSecurityContent bool     `json:"referencedAsSecurityContent"`
}

func newMediaResponse(m model.MediaContent) MediaResponse {
	return MediaResponse{
		ContentID:                   m.ContentID,
		Slot:                        uint8(m.Slot),
		State:                       string(m.State),
		ReferencedAsProfileContent:  m.ReferencedAsProfileContent,
		ReferencedAsSecurityContent: m.ReferencedAsSecurityContent,
	}
}

// ProcessingStateResponse is returned by POST /api/v1/media/:slot.
type ProcessingStateResponse struct {
	ProcessingID  uuid.UUID `json:"processingId"`
	Phase         int       `json:"phase"`
	QueuePosition int       `json:"queuePosition"`
	ContentID     uuid.UUID `json:"contentId,omitempty"`
}

// ModerationItemResponse is one entry of GET
// /api/v1/admin/moderation/escalated's array response. Carries every field
// ApplyVerdict needs to re-locate the row (there is no stable item id to
// hand back — moderation.Item.ID is a synthetic value derived for display
// only), so the admin client echoes these same fields back on resolve.
type ModerationItemResponse struct {
	AccountID   int64     `json:"accountId"`
	ContentType string    `json:"contentType"`
	ReferenceID uuid.UUID `json:"referenceId"`
	TextValue   string    `json:"textValue,omitempty"`
	IsInitial   bool      `json:"isInitial"`
}
