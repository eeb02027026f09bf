package content

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/internal/model"
)

// EventPublisher delivers a per-account state-change notification over the
// event bus. Implemented by internal/eventbus.
type EventPublisher interface {
	PublishProcessingState(accountID model.AccountIdInternal, state ProcessingState)
}

// Store is the durable-store surface the pipeline needs: inserting the
// finished content row, and collapsing a pending profile visibility
// (spec.md §4.D "Initial-setup side effect"). The pipeline calls only
// InsertContent. The collapse runs after an accepting moderation verdict
// has committed, in its own transaction rather than the verdict's, and it
// fires once the owner has no initial content still in moderation; it does
// not check which contents are referenced as profile content or whether
// they were accepted.
type Store interface {
	InsertContent(ctx context.Context, owner model.AccountIdInternal, slot model.ContentSlot, contentID uuid.UUID, securityFlag, faceDetected bool) error
	CollapseInitialVisibilityIfReady(ctx context.Context, owner model.AccountIdInternal) error
}

// BlockingPool runs CPU-bound work off the caller's goroutine. Implemented
// by internal/workpool.
type BlockingPool interface {
	Submit(func())
}

// Pipeline wires the queue, transcoder, store, and event publisher into the
// single-worker loop described in spec.md §4.D.
type Pipeline struct {
	queue      *Queue
	transcoder *Transcoder
	store      Store
	events     EventPublisher
	pool       BlockingPool
	mediaDir   string

	securitySlot    model.ContentSlot
	hasSecuritySlot bool
}

// New returns a Pipeline. mediaDir is the durable media directory output
// files are written under.
func New(store Store, events EventPublisher, pool BlockingPool, mediaDir string, detector FaceDetector) *Pipeline {
	return &Pipeline{
		queue:      NewQueue(),
		transcoder: NewTranscoder(detector),
		store:      store,
		events:     events,
		pool:       pool,
		mediaDir:   mediaDir,
	}
}

// SetSecuritySlot designates slot as the one reserved for a security-selfie
// upload, whose resulting content is always marked SecurityFlag. No
// configuration option sets it, and internal/appstate does not call it;
// pipelines with no security slot leave every content's SecurityFlag false.
func (p *Pipeline) SetSecuritySlot(slot model.ContentSlot) {
	p.securitySlot = slot
	p.hasSecuritySlot = true
}

// Enqueue uploads rawPath into key's slot. If the slot already held an
// in-flight upload, its temp files are removed and its state abandoned
// (spec.md §4.D "Slot model").
func (p *Pipeline) Enqueue(key ProcessingKey, rawPath string, params TranscodeParams) ProcessingState {
	if prior, ok := p.queue.Abandon(key); ok {
		abandonTempFiles(prior)
	}

	state := &ProcessingState{
		ProcessingID: uuid.New(),
		Key:          key,
		Phase:        PhaseInQueue,
		TempRawPath:  rawPath,
		Params:       params,
	}
	p.queue.Push(key, state)
	p.publishQueuePositions()
	return *state
}

func abandonTempFiles(s *ProcessingState) {
	if s == nil {
		return
	}
	if s.TempRawPath != "" {
		_ = os.Remove(s.TempRawPath)
	}
	if s.TempOutPath != "" {
		_ = os.Remove(s.TempOutPath)
	}
}

// Run is the single worker loop: it awaits the queue's notifier, dequeues
// one key per wake, and processes it to completion (spec.md §4.D
// "Worker"). Intended to run in its own goroutine for the process
// lifetime.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.queue.Notify():
			for p.processOne(ctx) {
			}
		}
	}
}

// processOne dequeues and fully processes a single key; it returns true if
// a key was available (callers loop until the queue drains between wakes).
// Every phase transition is pushed through queue.UpdateProcessing so a
// concurrent Lookup (or Abandon, for a slot overwritten mid-transcode)
// never reads state this goroutine is still mutating.
func (p *Pipeline) processOne(ctx context.Context) bool {
	key, statePtr, remaining, ok := p.queue.dequeueStep()
	if !ok {
		return false
	}
	state := *statePtr
	defer p.queue.Finish(key)

	state.Phase = PhaseProcessing
	p.queue.UpdateProcessing(key, state)
	p.events.PublishProcessingState(key.Owner, state)

	p.decrementQueuePositions(remaining)

	result, err := p.transcodeBlocking(&state)
	if err != nil {
		slog.Error("content transcode failed", "owner", key.Owner, "slot", key.Slot, "error", err)
		state.Phase = PhaseFailed
		p.queue.UpdateProcessing(key, state)
		p.events.PublishProcessingState(key.Owner, state)
		_ = os.Remove(state.TempRawPath)
		return true
	}

	contentID := uuid.New()
	outPath := filepath.Join(p.mediaDir, contentID.String()+".jpg")
	if err := os.WriteFile(outPath, result.OutputBytes, 0o600); err != nil {
		slog.Error("content write output failed", "owner", key.Owner, "slot", key.Slot, "error", err)
		state.Phase = PhaseFailed
		p.queue.UpdateProcessing(key, state)
		p.events.PublishProcessingState(key.Owner, state)
		_ = os.Remove(state.TempRawPath)
		return true
	}
	state.TempOutPath = outPath

	securityFlag := p.hasSecuritySlot && key.Slot == p.securitySlot
	if err := p.store.InsertContent(ctx, key.Owner, key.Slot, contentID, securityFlag, result.FaceDetected); err != nil {
		slog.Error("content insert failed", "owner", key.Owner, "slot", key.Slot, "error", err)
		_ = os.Remove(outPath)
		state.Phase = PhaseFailed
		p.queue.UpdateProcessing(key, state)
		p.events.PublishProcessingState(key.Owner, state)
		_ = os.Remove(state.TempRawPath)
		return true
	}

	state.Phase = PhaseCompleted
	state.ContentID = contentID
	p.queue.UpdateProcessing(key, state)
	p.events.PublishProcessingState(key.Owner, state)
	_ = os.Remove(state.TempRawPath)
	return true
}

func (p *Pipeline) transcodeBlocking(state *ProcessingState) (TranscodeResult, error) {
	if p.pool == nil {
		return p.transcoder.Transcode(state.TempRawPath, state.Params)
	}
	resultCh := make(chan struct {
		r   TranscodeResult
		err error
	}, 1)
	p.pool.Submit(func() {
		r, err := p.transcoder.Transcode(state.TempRawPath, state.Params)
		resultCh <- struct {
			r   TranscodeResult
			err error
		}{r, err}
	})
	out := <-resultCh
	return out.r, out.err
}

// decrementQueuePositions walks the remaining queue after a dequeue and
// decrements each entry's InQueue position, publishing the updated state
// (spec.md §4.D "Queue-position update").
func (p *Pipeline) decrementQueuePositions(remaining []ProcessingKey) {
	for i, key := range remaining {
		s, ok := p.queue.Lookup(key)
		if !ok || s.Phase != PhaseInQueue {
			continue
		}
		s.QueuePosition = i
		p.queue.setState(key, &s)
		p.events.PublishProcessingState(key.Owner, s)
	}
}

func (p *Pipeline) publishQueuePositions() {
	p.queue.mu.Lock()
	keys := make([]ProcessingKey, 0, p.queue.order.Len())
	for el := p.queue.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(ProcessingKey))
	}
	p.queue.mu.Unlock()
	p.decrementQueuePositions(keys)
}
