package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/eventbus"
	"github.com/afrodite-backend/corectl/internal/model"
)

type fakeNewsStore struct {
	titles []string
}

func (f *fakeNewsStore) CreateNews(ctx context.Context, title, body string) (int, error) {
	f.titles = append(f.titles, title)
	return len(f.titles), nil
}

type recordingNotifier struct {
	sent []model.AccountIdInternal
	kind string
	flag model.NotificationFlag
}

func (r *recordingNotifier) SendConnectedEvent(accountID model.AccountIdInternal, kind string, payload any, flag model.NotificationFlag) {
	r.sent = append(r.sent, accountID)
	r.kind = kind
	r.flag = flag
}

func TestNewsServicePublishRejectsEmptyTitle(t *testing.T) {
	svc := NewNewsService(&fakeNewsStore{}, cache.New(), &recordingNotifier{})

	err := svc.Publish(context.Background(), "", "body")
	assert.True(t, IsValidationError(err))
}

func TestNewsServicePublishNotifiesEveryCachedAccount(t *testing.T) {
	store := &fakeNewsStore{}
	c := cache.New()
	c.Load([]cache.AccountSeed{
		{InternalID: 1, AccountID: model.NewAccountId()},
		{InternalID: 2, AccountID: model.NewAccountId()},
	})
	notifier := &recordingNotifier{}
	svc := NewNewsService(store, c, notifier)

	require.NoError(t, svc.Publish(context.Background(), "Update", "Something changed"))
	assert.Len(t, notifier.sent, 2)
	assert.Equal(t, eventbus.KindNewsChanged, notifier.kind)
	assert.Equal(t, model.FlagNewsChanged, notifier.flag)
	assert.Equal(t, []string{"Update"}, store.titles)
}
