// Package cache holds the process-wide account cache: a primary
// AccountId->*Entry map and a secondary AccessToken->*Entry map, loaded once
// at startup from the durable store and thereafter updated write-through
// under each entry's own lock (spec.md §4.B). Grounded on the teacher's
// pkg/session.Manager (map + sync.RWMutex, per-entity state, Clone-style
// snapshotting), generalized to two maps sharing the same entry pointers.
package cache

import (
	"net/netip"
	"sync"

	"github.com/afrodite-backend/corectl/internal/model"
)

// EventMode describes how events are delivered to a connected account.
type EventMode int

const (
	// EventModeNone means the account is not connected to a live session.
	EventModeNone EventMode = iota
	// EventModeSocket means events are sent to an active session sender.
	EventModeSocket
)

// EventSender delivers a single event to a connected client. Implemented by
// the session package; cache only holds the handle.
type EventSender interface {
	SendEvent(kind string, payload any) error
}

// SharedState is the small, always-resident slice of account state every
// authenticated request consults.
type SharedState struct {
	AccountState      model.AccountState
	Visibility        model.ProfileVisibility
	Permissions       Permissions
	PendingPush       model.PendingFlags
}

// Permissions is a placeholder bitset for admin/moderator roles; spec.md
// leaves its contents open (see DESIGN.md Open Questions).
type Permissions uint32

const (
	PermissionNone      Permissions = 0
	PermissionModerator Permissions = 1 << iota
	PermissionAdmin
)

// ChatPushState caches push-token bookkeeping fields read on every push
// delivery pass, avoiding a durable-store round trip per account per tick.
type ChatPushState struct {
	HasAPNsToken    bool
	HasFCMToken     bool
	HasWebPushToken bool
}

// Entry is one account's cache line. Profile is only populated when the
// profile component is enabled for this process (spec.md §4.B); it is
// heavy, so callers that don't need it should avoid forcing a load.
type Entry struct {
	mu sync.RWMutex

	accountIdInternal model.AccountIdInternal
	accountID         model.AccountId

	profile *model.Profile
	chat    *ChatPushState

	shared SharedState

	currentConnection netip.AddrPort
	hasConnection     bool
	currentEventMode  EventMode
	sender            EventSender
}

func newEntry(internalID model.AccountIdInternal, accountID model.AccountId, shared SharedState) *Entry {
	return &Entry{
		accountIdInternal: internalID,
		accountID:         accountID,
		shared:            shared,
	}
}

// Read runs fn under the entry's read lock. fn must not perform I/O — it
// may only inspect fields (spec.md §4.B "closures must not perform I/O").
func (e *Entry) Read(fn func(*Entry)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e)
}

// Write runs fn under the entry's write lock. Same I/O restriction as Read.
func (e *Entry) Write(fn func(*Entry)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e)
}

// AccountIdInternal returns the entry's internal numeric id. Safe to call
// without a lock: immutable for the entry's lifetime.
func (e *Entry) AccountIdInternal() model.AccountIdInternal { return e.accountIdInternal }

// AccountID returns the entry's public account id. Immutable, lock-free.
func (e *Entry) AccountID() model.AccountId { return e.accountID }

// Profile returns the cached profile, or nil if not loaded. Call within Read/Write.
func (e *Entry) Profile() *model.Profile { return e.profile }

// SetProfile installs or replaces the cached profile. Call within Write.
func (e *Entry) SetProfile(p *model.Profile) { e.profile = p }

// Chat returns the cached push-token bookkeeping, or nil. Call within Read/Write.
func (e *Entry) Chat() *ChatPushState { return e.chat }

// SetChat installs the cached push-token bookkeeping. Call within Write.
func (e *Entry) SetChat(c *ChatPushState) { e.chat = c }

// Shared returns a copy of the small always-resident state. Call within Read/Write.
func (e *Entry) Shared() SharedState { return e.shared }

// SetShared replaces the small always-resident state. Call within Write.
func (e *Entry) SetShared(s SharedState) { e.shared = s }

// Connection reports the bound remote address, if any. Call within Read/Write.
func (e *Entry) Connection() (netip.AddrPort, bool) { return e.currentConnection, e.hasConnection }

// EventMode reports the current delivery mode and sender handle. Call within Read/Write.
func (e *Entry) EventMode() (EventMode, EventSender) { return e.currentEventMode, e.sender }

// bindConnection records a new connection and event sender. Internal: only
// called by Cache.TokenBind under the entry's write lock, after the
// top-level lock has been released.
func (e *Entry) bindConnection(addr netip.AddrPort, sender EventSender) {
	e.currentConnection = addr
	e.hasConnection = true
	e.currentEventMode = EventModeSocket
	e.sender = sender
}

// clearConnection drops connection and event-mode fields, per spec.md §4.B
// "connection drop: clears connection and event-mode fields".
func (e *Entry) clearConnection() {
	e.currentConnection = netip.AddrPort{}
	e.hasConnection = false
	e.currentEventMode = EventModeNone
	e.sender = nil
}
