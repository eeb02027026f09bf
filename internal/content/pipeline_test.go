package content

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/model"
)

type fakeStore struct {
	mu       sync.Mutex
	inserted []uuid.UUID
	collapsed []model.AccountIdInternal
	failInsert bool
}

func (f *fakeStore) InsertContent(_ context.Context, owner model.AccountIdInternal, slot model.ContentSlot, contentID uuid.UUID, securityFlag, faceDetected bool) error {
	if f.failInsert {
		return assert.AnError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, contentID)
	return nil
}

func (f *fakeStore) CollapseInitialVisibilityIfReady(_ context.Context, owner model.AccountIdInternal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collapsed = append(f.collapsed, owner)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	states []ProcessingState
}

func (f *fakeEvents) PublishProcessingState(_ model.AccountIdInternal, state ProcessingState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
}

func (f *fakeEvents) snapshot() []ProcessingState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ProcessingState, len(f.states))
	copy(out, f.states)
	return out
}

func writeTestJPEG(t *testing.T, path string, size int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func TestPipelineProcessesUploadToCompletion(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.jpg")
	writeTestJPEG(t, rawPath, 600)

	store := &fakeStore{}
	events := &fakeEvents{}
	p := New(store, events, nil, dir, nil)

	key := ProcessingKey{Owner: 1, Slot: 0}
	p.Enqueue(key, rawPath, DefaultTranscodeParams(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.inserted) == 1
	}, 2*time.Second, 10*time.Millisecond)

	states := events.snapshot()
	require.NotEmpty(t, states)
	last := states[len(states)-1]
	assert.Equal(t, PhaseCompleted, last.Phase)

	_, err := os.Stat(rawPath)
	assert.True(t, os.IsNotExist(err), "raw upload must be deleted in all cases")
}

func TestPipelineFailsOnLowResolution(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "raw.jpg")
	writeTestJPEG(t, rawPath, 100)

	store := &fakeStore{}
	events := &fakeEvents{}
	p := New(store, events, nil, dir, nil)

	key := ProcessingKey{Owner: 1, Slot: 0}
	p.Enqueue(key, rawPath, DefaultTranscodeParams(false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		states := events.snapshot()
		return len(states) > 0 && states[len(states)-1].Phase == PhaseFailed
	}, 2*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.inserted)
}

func TestEnqueueAbandonsPriorUnfinishedUpload(t *testing.T) {
	dir := t.TempDir()
	firstRaw := filepath.Join(dir, "first.jpg")
	writeTestJPEG(t, firstRaw, 600)

	store := &fakeStore{}
	events := &fakeEvents{}
	p := New(store, events, nil, dir, nil)

	key := ProcessingKey{Owner: 1, Slot: 2}
	p.Enqueue(key, firstRaw, DefaultTranscodeParams(false))

	secondRaw := filepath.Join(dir, "second.jpg")
	writeTestJPEG(t, secondRaw, 600)
	p.Enqueue(key, secondRaw, DefaultTranscodeParams(false))

	_, err := os.Stat(firstRaw)
	assert.True(t, os.IsNotExist(err), "abandoned upload's temp file must be removed")

	s, ok := p.queue.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, secondRaw, s.TempRawPath)
}

// slowDetector blocks DetectFace until release is closed, letting a test
// hold processOne mid-transcode.
type slowDetector struct {
	release chan struct{}
}

func (d *slowDetector) DetectFace(image.Image) (bool, error) {
	<-d.release
	return false, nil
}

func TestEnqueueDuringInFlightTranscodeDoesNotRaceWorkerCleanup(t *testing.T) {
	dir := t.TempDir()
	firstRaw := filepath.Join(dir, "first.jpg")
	writeTestJPEG(t, firstRaw, 600)

	store := &fakeStore{}
	events := &fakeEvents{}
	detector := &slowDetector{release: make(chan struct{})}
	p := New(store, events, nil, dir, detector)

	key := ProcessingKey{Owner: 1, Slot: 3}
	p.Enqueue(key, firstRaw, DefaultTranscodeParams(true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		s, ok := p.queue.Lookup(key)
		return ok && s.Phase == PhaseProcessing
	}, 2*time.Second, 10*time.Millisecond, "worker must have dequeued and started processing")

	secondRaw := filepath.Join(dir, "second.jpg")
	writeTestJPEG(t, secondRaw, 600)
	p.Enqueue(key, secondRaw, DefaultTranscodeParams(false))

	_, err := os.Stat(firstRaw)
	require.NoError(t, err, "in-flight upload's temp file must survive a concurrent Enqueue for the same slot")

	close(detector.release)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.inserted) == 2
	}, 2*time.Second, 10*time.Millisecond)

	_, err = os.Stat(firstRaw)
	assert.True(t, os.IsNotExist(err), "worker must still clean up its own temp file once finished")
}

func TestQueuePositionDecrementsAfterDequeue(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{}
	events := &fakeEvents{}
	p := New(store, events, nil, dir, nil)

	a := ProcessingKey{Owner: 1, Slot: 0}
	b := ProcessingKey{Owner: 2, Slot: 0}

	rawA := filepath.Join(dir, "a.jpg")
	rawB := filepath.Join(dir, "b.jpg")
	writeTestJPEG(t, rawA, 600)
	writeTestJPEG(t, rawB, 600)

	p.Enqueue(a, rawA, DefaultTranscodeParams(false))
	p.Enqueue(b, rawB, DefaultTranscodeParams(false))

	sb, ok := p.queue.Lookup(b)
	require.True(t, ok)
	assert.Equal(t, 1, sb.QueuePosition)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.Eventually(t, func() bool {
		sb, ok := p.queue.Lookup(b)
		return ok && sb.QueuePosition == 0
	}, 2*time.Second, 10*time.Millisecond)
}
