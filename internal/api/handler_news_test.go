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
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/service"
)

type fakeNewsStore struct {
	lastTitle, lastBody string
}

func (f *fakeNewsStore) CreateNews(ctx context.Context, title, body string) (int, error) {
	f.lastTitle, f.lastBody = title, body
	return 1, nil
}

type fakeNotifier struct{ sent int }

func (f *fakeNotifier) SendConnectedEvent(accountID model.AccountIdInternal, kind string, payload any, flag model.NotificationFlag) {
	f.sent++
}

func TestPublishNewsHandlerSuccess(t *testing.T) {
	store := &fakeNewsStore{}
	notifier := &fakeNotifier{}
	s := &Server{newsService: service.NewNewsService(store, cache.New(), notifier)}

	body, _ := json.Marshal(PublishNewsRequest{Title: "update", Body: "details"})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/news", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.publishNewsHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "update", store.lastTitle)
}

func TestPublishNewsHandlerValidation(t *testing.T) {
	store := &fakeNewsStore{}
	s := &Server{newsService: service.NewNewsService(store, cache.New(), &fakeNotifier{})}

	body, _ := json.Marshal(PublishNewsRequest{Title: "", Body: "details"})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/news", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.publishNewsHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestPublishNewsHandlerNoComponent(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/news", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.publishNewsHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}
