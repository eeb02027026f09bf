package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/moderation"
)

type fakeModerationStore struct {
	escalated []moderation.Item
	applied   []moderation.Verdict
}

func (f *fakeModerationStore) ListEscalated(ctx context.Context, pageSize int) ([]moderation.Item, error) {
	return f.escalated, nil
}

func (f *fakeModerationStore) ApplyVerdict(ctx context.Context, item moderation.Item, verdict moderation.Verdict) error {
	f.applied = append(f.applied, verdict)
	return nil
}

func TestModerationServiceListEscalated(t *testing.T) {
	store := &fakeModerationStore{escalated: []moderation.Item{{AccountID: 1}}}
	svc := NewModerationService(store)

	items, err := svc.ListEscalated(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestModerationServiceResolveRejectsEscalateAction(t *testing.T) {
	store := &fakeModerationStore{}
	svc := NewModerationService(store)

	err := svc.Resolve(context.Background(), moderation.Item{AccountID: 1}, moderation.VerdictEscalate, "")
	assert.True(t, IsValidationError(err))
	assert.Empty(t, store.applied)
}

func TestModerationServiceResolveAppliesVerdict(t *testing.T) {
	store := &fakeModerationStore{}
	svc := NewModerationService(store)

	err := svc.Resolve(context.Background(), moderation.Item{AccountID: 1}, moderation.VerdictReject, "contains profanity")
	require.NoError(t, err)
	require.Len(t, store.applied, 1)
	assert.Equal(t, moderation.VerdictReject, store.applied[0].Action)
	assert.Equal(t, "contains profanity", store.applied[0].RejectionReason)
}
