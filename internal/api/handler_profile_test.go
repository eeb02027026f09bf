package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/geoindex"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/moderation"
	"github.com/afrodite-backend/corectl/internal/service"
)

type fakeProfileStore struct {
	profiles map[model.AccountIdInternal]model.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: map[model.AccountIdInternal]model.Profile{}}
}

func (f *fakeProfileStore) GetProfile(ctx context.Context, owner model.AccountIdInternal) (model.Profile, bool, error) {
	p, ok := f.profiles[owner]
	return p, ok, nil
}

func (f *fakeProfileStore) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	f.profiles[p.AccountID] = p
	return p, nil
}

func (f *fakeProfileStore) BumpSyncVersion(ctx context.Context, owner model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error) {
	return 1, nil
}

func (f *fakeProfileStore) EnqueueProfileStringModeration(ctx context.Context, owner model.AccountIdInternal, contentType moderation.ContentType, text string) error {
	return nil
}

func testCorners() geoindex.Corners {
	return geoindex.Corners{
		LatTopLeft:     60,
		LonTopLeft:     -10,
		LatBottomRight: 40,
		LonBottomRight: 10,
		CellSquareKm:   25,
	}
}

func TestUpdateProfileHandlerRejectsInvalidAge(t *testing.T) {
	store := newFakeProfileStore()
	c := cache.New()
	s := &Server{profileService: service.NewProfileService(store, geoindex.New(testCorners()), c)}

	accountID := model.NewAccountId()
	entry := c.Insert(model.AccountIdInternal(1), accountID, "tok", cache.SharedState{})

	body, _ := json.Marshal(UpdateProfileRequest{Name: "x", Age: 10})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ec := e.NewContext(req, rec)
	ec.Set(contextAccountKey, entry)

	err := s.updateProfileHandler(ec)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestUpdateAndGetProfileHandlerRoundTrip(t *testing.T) {
	store := newFakeProfileStore()
	c := cache.New()
	s := &Server{profileService: service.NewProfileService(store, geoindex.New(testCorners()), c)}

	accountID := model.NewAccountId()
	entry := c.Insert(model.AccountIdInternal(1), accountID, "tok", cache.SharedState{})

	body, _ := json.Marshal(UpdateProfileRequest{
		Name: "Alex",
		Text: "hello",
		Age:  30,
		Location: model.Location{Latitude: 50, Longitude: 0},
	})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ec := e.NewContext(req, rec)
	ec.Set(contextAccountKey, entry)

	require.NoError(t, s.updateProfileHandler(ec))
	assert.Equal(t, http.StatusOK, rec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	getRec := httptest.NewRecorder()
	getCtx := e.NewContext(getReq, getRec)
	getCtx.Set(contextAccountKey, entry)

	require.NoError(t, s.getProfileHandler(getCtx))
	assert.Equal(t, http.StatusOK, getRec.Code)

	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &resp))
	assert.Equal(t, "Alex", resp.Name)
	assert.Equal(t, int32(30), resp.Age)
}

func TestGetProfileHandlerNotFound(t *testing.T) {
	store := newFakeProfileStore()
	c := cache.New()
	s := &Server{profileService: service.NewProfileService(store, geoindex.New(testCorners()), c)}
	entry := c.Insert(model.AccountIdInternal(1), model.NewAccountId(), "tok", cache.SharedState{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()
	ec := e.NewContext(req, rec)
	ec.Set(contextAccountKey, entry)

	err := s.getProfileHandler(ec)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
