package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/model"
)

type fakeSyncStore struct {
	versions map[model.DataCategory]model.SyncVersion
	resets   []model.DataCategory
}

func newFakeSyncStore() *fakeSyncStore {
	return &fakeSyncStore{versions: make(map[model.DataCategory]model.SyncVersion)}
}

func (f *fakeSyncStore) RotationDecision(context.Context, model.AccountIdInternal) (RotationDecision, error) {
	return TokensStillValid, nil
}

func (f *fakeSyncStore) RotateTokens(context.Context, model.AccountIdInternal, model.RefreshToken) (RotatedTokens, error) {
	return RotatedTokens{}, nil
}

func (f *fakeSyncStore) SyncVersion(_ context.Context, _ model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error) {
	return f.versions[category], nil
}

func (f *fakeSyncStore) ResetSyncVersion(_ context.Context, _ model.AccountIdInternal, category model.DataCategory) error {
	f.resets = append(f.resets, category)
	f.versions[category] = 0
	return nil
}

func TestNegotiateSyncEqualVersionsProduceNoDecisions(t *testing.T) {
	store := newFakeSyncStore()
	for _, c := range model.AllDataCategories {
		store.versions[c] = 5
	}
	client := make([]CategoryVersion, 0, len(model.AllDataCategories))
	for _, c := range model.AllDataCategories {
		client = append(client, CategoryVersion{Category: c, Version: 5})
	}

	decisions, err := NegotiateSync(context.Background(), store, 1, client)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestNegotiateSyncServerAheadSendsDelta(t *testing.T) {
	store := newFakeSyncStore()
	store.versions[model.CategoryProfile] = 43

	decisions, err := NegotiateSync(context.Background(), store, 1, []CategoryVersion{
		{Category: model.CategoryProfile, Version: 42},
	})
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, model.CategoryProfile, decisions[0].Category)
	assert.Equal(t, model.SyncSendDelta, decisions[0].Outcome)
	assert.Empty(t, store.resets)
}

func TestNegotiateSyncSaturatedVersionResets(t *testing.T) {
	store := newFakeSyncStore()
	store.versions[model.CategoryMatches] = model.MaxSyncVersion

	decisions, err := NegotiateSync(context.Background(), store, 1, []CategoryVersion{
		{Category: model.CategoryMatches, Version: model.MaxSyncVersion},
	})
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, model.SyncResetAndSend, decisions[0].Outcome)
	assert.Equal(t, []model.DataCategory{model.CategoryMatches}, store.resets)
}

func TestNegotiateSyncOmittedCategoryTreatedAsZero(t *testing.T) {
	store := newFakeSyncStore()
	store.versions[model.CategoryAccount] = 1

	decisions, err := NegotiateSync(context.Background(), store, 1, nil)
	require.NoError(t, err)

	found := false
	for _, d := range decisions {
		if d.Category == model.CategoryAccount {
			found = true
			assert.Equal(t, model.SyncSendDelta, d.Outcome)
		}
	}
	assert.True(t, found)
}
