package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModerationStore struct {
	mu      sync.Mutex
	pages   [][]Item
	applied []Item
	failOn  uuid.UUID
}

func (f *fakeModerationStore) FetchPage(_ context.Context, _ QueueKind, _ int) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pages) == 0 {
		return nil, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeModerationStore) ApplyVerdict(_ context.Context, item Item, _ Verdict) error {
	if item.ID == f.failOn {
		return errors.New("conflict")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, item)
	return nil
}

func TestWorkerRunOnceProcessesWholePageDespiteOneFailure(t *testing.T) {
	failing := uuid.New()
	store := &fakeModerationStore{
		pages: [][]Item{{
			{ID: uuid.New(), ContentType: ContentTypeProfileName, TextValue: "x"},
			{ID: failing, ContentType: ContentTypeProfileName, TextValue: "y"},
			{ID: uuid.New(), ContentType: ContentTypeProfileName, TextValue: "z"},
		}},
		failOn: failing,
	}
	w := NewWorker(store, QueueProfileString, Config{DefaultAction: VerdictReject}, 10, 4, nil)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, store.applied, 2)
}

func TestWorkerRunOnceReturnsZeroOnEmptyPage(t *testing.T) {
	store := &fakeModerationStore{}
	w := NewWorker(store, QueueMediaContent, Config{DefaultAction: VerdictReject}, 10, 4, nil)

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

type fakeEscalator struct {
	mu    sync.Mutex
	items []string
}

func (f *fakeEscalator) NotifyModerationEscalated(_ context.Context, itemID, _, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, itemID)
}

func TestWorkerNotifiesEscalatorOnEscalatedVerdict(t *testing.T) {
	store := &fakeModerationStore{
		pages: [][]Item{{
			{ID: uuid.New(), ContentType: ContentTypeProfileText, TextValue: "hello world"},
		}},
	}
	w := NewWorker(store, QueueProfileString, Config{DefaultAction: VerdictEscalate}, 10, 4, nil)
	esc := &fakeEscalator{}
	w.SetEscalator(esc)

	_, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, esc.items, 1)
}
