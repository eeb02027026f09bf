// Package content implements the upload-processing pipeline: a seven-slot
// per-account model, a process-wide FIFO queue of pending transcodes, and a
// single worker that transcodes, persists, and publishes state changes
// (spec.md §4.D). Grounded on the teacher's pkg/queue (WorkerPool/Worker:
// notifier-driven loop, health/status tracking, publish-after-transition),
// generalized from a DB-polled session queue to an in-memory key queue
// woken by a channel, since spec.md §4.D's queue is process-memory, not a
// durable-store poll target.
package content

import (
	"container/list"
	"sync"

	"github.com/afrodite-backend/corectl/internal/model"
)

// ProcessingKey identifies one account's slot in the queue.
type ProcessingKey struct {
	Owner model.AccountIdInternal
	Slot  model.ContentSlot
}

// Queue is the process-wide FIFO of ProcessingKey, paired with a map from
// key to its ProcessingState. Re-queueing an existing key keeps its
// position (spec.md §4.D "does not push to the back") but replaces its
// state.
type Queue struct {
	mu       sync.Mutex
	order    *list.List // of ProcessingKey
	elements map[ProcessingKey]*list.Element
	states   map[ProcessingKey]*ProcessingState
	// processing holds the state for a key the worker has already
	// dequeued and is actively transcoding. Kept separate from states so
	// Lookup can still report it and Abandon knows not to touch its
	// temp files out from under the worker.
	processing map[ProcessingKey]*ProcessingState
	notify     chan struct{}
}

// NewQueue returns an empty queue with its wake channel ready.
func NewQueue() *Queue {
	return &Queue{
		order:      list.New(),
		elements:   make(map[ProcessingKey]*list.Element),
		states:     make(map[ProcessingKey]*ProcessingState),
		processing: make(map[ProcessingKey]*ProcessingState),
		notify:     make(chan struct{}, 1),
	}
}

// Notify is closed-over by the worker; it wakes on every push.
func (q *Queue) Notify() <-chan struct{} { return q.notify }

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Push inserts or replaces the state for key. If key is already queued its
// position in the FIFO is unchanged; only Push of a brand-new key appends
// to the back.
func (q *Queue) Push(key ProcessingKey, state *ProcessingState) {
	q.mu.Lock()
	if _, exists := q.elements[key]; !exists {
		el := q.order.PushBack(key)
		q.elements[key] = el
	}
	q.states[key] = state
	q.mu.Unlock()
	q.wake()
}

// Abandon drops key from the queue without running it — used when a slot
// is overwritten before its prior upload finished processing (spec.md
// §4.D "its state is abandoned"). If key has already been dequeued and is
// being transcoded (tracked in processing, not states), Abandon leaves it
// alone and returns ok=false: its temp files belong to the in-flight
// worker, which removes them itself when it finishes, and the caller's
// new upload is simply queued as a separate entry.
func (q *Queue) Abandon(key ProcessingKey) (*ProcessingState, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	prior, ok := q.states[key]
	if !ok {
		return nil, false
	}
	if el, exists := q.elements[key]; exists {
		q.order.Remove(el)
		delete(q.elements, key)
	}
	delete(q.states, key)
	return prior, ok
}

// Lookup returns a copy of key's current state, whether still queued or
// already dequeued and being processed.
func (q *Queue) Lookup(key ProcessingKey) (ProcessingState, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.states[key]; ok {
		return *s, true
	}
	if s, ok := q.processing[key]; ok {
		return *s, true
	}
	return ProcessingState{}, false
}

// dequeueStep pops the front key (if any), moves its state from the
// queued map into the processing map (so Lookup/Abandon still see it
// while the worker owns it), and returns a snapshot of the remaining
// queue order for the position-update walk (spec.md §4.D "Queue-position
// update").
func (q *Queue) dequeueStep() (ProcessingKey, *ProcessingState, []ProcessingKey, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.order.Front()
	if front == nil {
		return ProcessingKey{}, nil, nil, false
	}
	key := front.Value.(ProcessingKey)
	state := q.states[key]

	q.order.Remove(front)
	delete(q.elements, key)
	delete(q.states, key)
	q.processing[key] = state

	remaining := make([]ProcessingKey, 0, q.order.Len())
	for el := q.order.Front(); el != nil; el = el.Next() {
		remaining = append(remaining, el.Value.(ProcessingKey))
	}
	return key, state, remaining, true
}

// Finish removes key from the processing map once the worker has fully
// handled it (success or failure) — after this, Lookup no longer reports
// it and a concurrent Abandon is free to treat any newly-queued state for
// the same key as the only one that matters.
func (q *Queue) Finish(key ProcessingKey) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, key)
}

// UpdateProcessing replaces the stored state for a key the worker has
// already dequeued, so Lookup observes each phase transition safely
// instead of racing the worker's in-place mutation of its own copy.
func (q *Queue) UpdateProcessing(key ProcessingKey, state ProcessingState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.processing[key]; ok {
		q.processing[key] = &state
	}
}

// setState overwrites the in-memory state for an already-queued key
// (used by the worker to publish InQueue position decrements without
// touching FIFO order).
func (q *Queue) setState(key ProcessingKey, state *ProcessingState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.elements[key]; ok {
		q.states[key] = state
	}
}
