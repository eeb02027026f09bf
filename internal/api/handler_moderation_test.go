package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/moderation"
	"github.com/afrodite-backend/corectl/internal/service"
)

type fakeModerationStore struct {
	items       []moderation.Item
	lastVerdict moderation.Verdict
	lastItem    moderation.Item
}

func (f *fakeModerationStore) ListEscalated(ctx context.Context, pageSize int) ([]moderation.Item, error) {
	if pageSize < len(f.items) {
		return f.items[:pageSize], nil
	}
	return f.items, nil
}

func (f *fakeModerationStore) ApplyVerdict(ctx context.Context, item moderation.Item, verdict moderation.Verdict) error {
	f.lastItem = item
	f.lastVerdict = verdict
	return nil
}

func TestListEscalatedHandler(t *testing.T) {
	refID := uuid.New()
	store := &fakeModerationStore{items: []moderation.Item{
		{AccountID: model.AccountIdInternal(7), ContentType: moderation.ContentTypeMediaContent, ReferenceID: refID, IsInitial: true},
	}}
	s := &Server{moderationService: service.NewModerationService(store)}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/moderation/escalated", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.listEscalatedHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out []ModerationItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(7), out[0].AccountID)
	assert.Equal(t, "media_content", out[0].ContentType)
	assert.Equal(t, refID, out[0].ReferenceID)
}

func TestResolveModerationHandlerRejectsEscalate(t *testing.T) {
	store := &fakeModerationStore{}
	s := &Server{moderationService: service.NewModerationService(store)}

	body, _ := json.Marshal(ResolveModerationRequest{
		AccountID:   7,
		ContentType: "profile_name",
		Action:      "escalate",
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/moderation/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.resolveModerationHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestResolveModerationHandlerSuccess(t *testing.T) {
	store := &fakeModerationStore{}
	s := &Server{moderationService: service.NewModerationService(store)}

	refID := uuid.New()
	body, _ := json.Marshal(ResolveModerationRequest{
		AccountID:   7,
		ContentType: "media_content",
		ReferenceID: refID.String(),
		IsInitial:   true,
		Action:      "reject",
		RejectionReason: "nudity",
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/moderation/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.resolveModerationHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, model.AccountIdInternal(7), store.lastItem.AccountID)
	assert.Equal(t, refID, store.lastItem.ReferenceID)
	assert.Equal(t, moderation.VerdictReject, store.lastVerdict.Action)
	assert.Equal(t, "nudity", store.lastVerdict.RejectionReason)
}

func TestParseContentTypeAndVerdictAction(t *testing.T) {
	ct, err := parseContentType("profile_text")
	require.NoError(t, err)
	assert.Equal(t, moderation.ContentTypeProfileText, ct)

	_, err = parseContentType("bogus")
	assert.ErrorIs(t, err, errInvalidContentType)

	action, err := parseVerdictAction("accept")
	require.NoError(t, err)
	assert.Equal(t, moderation.VerdictAccept, action)

	_, err = parseVerdictAction("bogus")
	assert.ErrorIs(t, err, errInvalidVerdictAction)
}
