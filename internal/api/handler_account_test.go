package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/service"
)

type fakeAccountStore struct {
	nextID int64
}

func (f *fakeAccountStore) CreateAccount(ctx context.Context, token model.AccessToken) (service.AccountRow, error) {
	f.nextID++
	return service.AccountRow{
		InternalID: model.AccountIdInternal(f.nextID),
		AccountID:  model.NewAccountId(),
		State:      model.AccountStateInitialSetup,
		HasToken:   true,
		Token:      token,
	}, nil
}

func (f *fakeAccountStore) SetAccountState(ctx context.Context, id model.AccountIdInternal, next model.AccountState) error {
	return nil
}

func (f *fakeAccountStore) RequestDeletion(ctx context.Context, id model.AccountIdInternal, at time.Time) error {
	return nil
}

func (f *fakeAccountStore) CancelDeletion(ctx context.Context, id model.AccountIdInternal) error {
	return nil
}

func TestCreateAccountHandlerNoComponent(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.createAccountHandler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}

func TestCreateAccountHandlerSuccess(t *testing.T) {
	s := &Server{accountService: service.NewAccountService(&fakeAccountStore{}, cache.New())}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, s.createAccountHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccountID)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRequestDeletionHandlerUsesCachedState(t *testing.T) {
	store := &fakeAccountStore{}
	c := cache.New()
	accountID := model.NewAccountId()
	entry := c.Insert(model.AccountIdInternal(1), accountID, "tok", cache.SharedState{AccountState: model.AccountStateNormal})
	s := &Server{accountService: service.NewAccountService(store, c)}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/deletion", nil)
	rec := httptest.NewRecorder()
	ec := e.NewContext(req, rec)
	ec.Set(contextAccountKey, entry)

	require.NoError(t, s.requestDeletionHandler(ec))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
