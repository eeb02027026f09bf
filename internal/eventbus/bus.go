// Package eventbus implements spec.md §4.H: a thin per-account broadcast
// layered over the cache's connection registry rather than a registry of
// its own. Grounded on the teacher's pkg/events.ConnectionManager, whose
// Broadcast snapshots a channel's subscribers under a lock and only sends
// after releasing it — here there is at most one subscriber per account
// (the cache enforces that), so the snapshot collapses to a single lookup.
package eventbus

import (
	"log/slog"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/content"
	"github.com/afrodite-backend/corectl/internal/model"
)

// Pusher wakes push delivery for an account once a pending flag has been
// set. Implemented by *push.Manager.
type Pusher interface {
	Wake(accountID model.AccountIdInternal)
}

// Bus is the process-wide event fan-out described in spec.md §4.H.
type Bus struct {
	cache  *cache.Cache
	push   Pusher
	logger *slog.Logger
}

// New wires a Bus over an already-populated cache and push manager.
func New(c *cache.Cache, p Pusher, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{cache: c, push: p, logger: logger}
}

// SendConnectedEvent is spec.md's send_connected_event: best-effort,
// non-blocking delivery to accountID's live session. If the account has no
// live session, or delivery to one fails, flag is set in the cache entry's
// pending-push bit-set and push delivery is woken instead.
func (b *Bus) SendConnectedEvent(accountID model.AccountIdInternal, kind string, payload any, flag model.NotificationFlag) {
	entry, ok := b.cache.LookupInternal(accountID)
	if !ok {
		return
	}
	if b.trySend(entry, kind, payload) {
		return
	}
	b.fallbackToPush(entry, flag)
}

// PublishProcessingState implements content.EventPublisher. Progress
// updates have no corresponding pending-flag bit — an offline account
// simply misses them and sees the final state on next poll — so this never
// falls back to push.
func (b *Bus) PublishProcessingState(accountID model.AccountIdInternal, state content.ProcessingState) {
	entry, ok := b.cache.LookupInternal(accountID)
	if !ok {
		return
	}
	b.trySend(entry, KindContentProcessingStateChanged, state)
}

func (b *Bus) trySend(entry *cache.Entry, kind string, payload any) bool {
	var sender cache.EventSender
	entry.Read(func(e *cache.Entry) {
		if mode, s := e.EventMode(); mode == cache.EventModeSocket {
			sender = s
		}
	})
	if sender == nil {
		return false
	}
	if err := sender.SendEvent(kind, payload); err != nil {
		b.logger.Warn("eventbus: live delivery failed", "account", entry.AccountIdInternal(), "kind", kind, "error", err)
		return false
	}
	return true
}

func (b *Bus) fallbackToPush(entry *cache.Entry, flag model.NotificationFlag) {
	entry.Write(func(e *cache.Entry) {
		shared := e.Shared()
		shared.PendingPush = shared.PendingPush.Set(flag)
		e.SetShared(shared)
	})
	b.push.Wake(entry.AccountIdInternal())
}
