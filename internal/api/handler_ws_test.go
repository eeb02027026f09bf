package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/session"
)

// fakeSessionStore satisfies session.Store without ever being called: the
// handshake paths under test fail before session.Negotiate reaches it.
type fakeSessionStore struct{}

func (fakeSessionStore) RotationDecision(ctx context.Context, accountID model.AccountIdInternal) (session.RotationDecision, error) {
	return session.RotationDecision{}, nil
}

func (fakeSessionStore) RotateTokens(ctx context.Context, accountID model.AccountIdInternal, currentRefreshToken model.RefreshToken) (session.RotatedTokens, error) {
	return session.RotatedTokens{}, nil
}

func (fakeSessionStore) SyncVersion(ctx context.Context, accountID model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error) {
	return 0, nil
}

func (fakeSessionStore) ResetSyncVersion(ctx context.Context, accountID model.AccountIdInternal, category model.DataCategory) error {
	return nil
}

func TestWsHandlerNoSessionStore(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.wsHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}

func TestWsHandlerMalformedSubprotocol(t *testing.T) {
	s := &Server{sessionStore: fakeSessionStore{}, cache: cache.New()}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req.Header.Set("Sec-WebSocket-Protocol", "not-a-valid-handshake")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.wsHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestWsHandlerUnknownToken(t *testing.T) {
	s := &Server{sessionStore: fakeSessionStore{}, cache: cache.New()}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req.Header.Set("Sec-WebSocket-Protocol", "v1,tnonexistent,cios_1_0_0")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.wsHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
