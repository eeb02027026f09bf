// Package metrics holds process-wide performance counters: spec.md §9
// "Design Notes" calls for simple in-memory counters with no persistence
// tie-in, read out through the health endpoint. Grounded on the teacher's
// pkg/queue.PoolHealth/WorkerHealth read-model shape (a plain JSON-taggable
// snapshot struct), generalized from one subsystem (the queue) to every
// in-scope component.
package metrics

import "sync/atomic"

// Registry groups one atomic.Int64 counter per event kind this process
// tracks. Every field is safe for concurrent increment; Snapshot takes a
// consistent-enough point-in-time copy for reporting (no cross-field
// atomicity is promised or needed).
type Registry struct {
	WebSocketConnectionsOpened atomic.Int64
	WebSocketConnectionsClosed atomic.Int64
	SessionsRotated            atomic.Int64

	PushSendsAttempted atomic.Int64
	PushSendsSucceeded atomic.Int64
	PushTokensRemoved  atomic.Int64
	PushProvidersDisabled atomic.Int64

	ModerationItemsProcessed atomic.Int64
	ModerationItemsEscalated atomic.Int64

	ContentUploadsAccepted atomic.Int64
	ContentUploadsRejected atomic.Int64
}

// Snapshot is the JSON-taggable read-model returned by Registry.Snapshot,
// mirroring the teacher's PoolHealth shape.
type Snapshot struct {
	WebSocketConnectionsOpened int64 `json:"websocket_connections_opened"`
	WebSocketConnectionsClosed int64 `json:"websocket_connections_closed"`
	SessionsRotated            int64 `json:"sessions_rotated"`

	PushSendsAttempted   int64 `json:"push_sends_attempted"`
	PushSendsSucceeded   int64 `json:"push_sends_succeeded"`
	PushTokensRemoved    int64 `json:"push_tokens_removed"`
	PushProvidersDisabled int64 `json:"push_providers_disabled"`

	ModerationItemsProcessed int64 `json:"moderation_items_processed"`
	ModerationItemsEscalated int64 `json:"moderation_items_escalated"`

	ContentUploadsAccepted int64 `json:"content_uploads_accepted"`
	ContentUploadsRejected int64 `json:"content_uploads_rejected"`
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Snapshot reads every counter into a plain struct suitable for JSON
// marshalling on the health endpoint.
func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		WebSocketConnectionsOpened: r.WebSocketConnectionsOpened.Load(),
		WebSocketConnectionsClosed: r.WebSocketConnectionsClosed.Load(),
		SessionsRotated:            r.SessionsRotated.Load(),
		PushSendsAttempted:         r.PushSendsAttempted.Load(),
		PushSendsSucceeded:         r.PushSendsSucceeded.Load(),
		PushTokensRemoved:          r.PushTokensRemoved.Load(),
		PushProvidersDisabled:      r.PushProvidersDisabled.Load(),
		ModerationItemsProcessed:   r.ModerationItemsProcessed.Load(),
		ModerationItemsEscalated:   r.ModerationItemsEscalated.Load(),
		ContentUploadsAccepted:     r.ContentUploadsAccepted.Load(),
		ContentUploadsRejected:     r.ContentUploadsRejected.Load(),
	}
}
