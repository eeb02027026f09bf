package cache

import (
	"errors"
	"net/netip"
	"sync"

	"github.com/afrodite-backend/corectl/internal/model"
)

// ErrTokenCollision is returned by TokenBind when the new token is already
// bound to a (possibly different) entry.
var ErrTokenCollision = errors.New("cache: access token already bound")

// ErrNotFound is returned when an account id has no cache entry.
var ErrNotFound = errors.New("cache: account not found")

// Cache is the process-wide account cache described in spec.md §4.B: one
// coarse RWMutex over the top-level maps, one RWMutex per entry. Entry
// locks are never acquired while holding the top-level write lock (spec.md
// §5), so every method below drops the top-level lock before touching an
// entry. Besides the two maps spec.md names (by account, by token), a third
// by-internal-id index lets durable-store-facing components (content,
// moderation, push) look an entry up without the external AccountId they
// were never given.
type Cache struct {
	mu         sync.RWMutex
	byID       map[model.AccountId]*Entry
	byToken    map[model.AccessToken]*Entry
	byInternal map[model.AccountIdInternal]*Entry
}

// New returns an empty Cache. Callers populate it via Load immediately
// after opening the durable store.
func New() *Cache {
	return &Cache{
		byID:       make(map[model.AccountId]*Entry),
		byToken:    make(map[model.AccessToken]*Entry),
		byInternal: make(map[model.AccountIdInternal]*Entry),
	}
}

// AccountSeed is the durable-store projection Load installs an Entry for.
type AccountSeed struct {
	InternalID  model.AccountIdInternal
	AccountID   model.AccountId
	AccessToken model.AccessToken // empty if account has none
	Shared      SharedState
}

// Load installs one entry per seed. Intended to run once at startup while
// the process has no other cache consumers; it still takes the top-level
// write lock so a concurrent call would be safe, it is simply unnecessary.
func (c *Cache) Load(seeds []AccountSeed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range seeds {
		e := newEntry(s.InternalID, s.AccountID, s.Shared)
		c.byID[s.AccountID] = e
		c.byInternal[s.InternalID] = e
		if s.AccessToken != "" {
			c.byToken[s.AccessToken] = e
		}
	}
}

// Insert adds a brand-new entry (e.g. right after account creation), wiring
// it into the primary map first and, if a token is given, the secondary
// map second — matching the invariant in spec.md §4.B ("insertion order is
// the reverse: primary first").
func (c *Cache) Insert(internalID model.AccountIdInternal, accountID model.AccountId, token model.AccessToken, shared SharedState) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := newEntry(internalID, accountID, shared)
	c.byID[accountID] = e
	c.byInternal[internalID] = e
	if token != "" {
		c.byToken[token] = e
	}
	return e
}

// Lookup finds the entry for accountID, if any.
func (c *Cache) Lookup(accountID model.AccountId) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[accountID]
	return e, ok
}

// LookupInternal finds the entry by internal id, the id durable-store-facing
// components (content pipeline, moderation, push) carry instead of the
// external AccountId.
func (c *Cache) LookupInternal(accountID model.AccountIdInternal) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byInternal[accountID]
	return e, ok
}

// LookupByToken finds the entry for an access token, if any.
func (c *Cache) LookupByToken(token model.AccessToken) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byToken[token]
	return e, ok
}

// TokenBind atomically moves (oldToken -> entry) to (newToken -> entry) and
// records the remote address that issued the bind, per spec.md §4.B "Token
// bind". Fails with ErrTokenCollision if newToken is already bound to any
// entry, except when newToken equals oldToken and is bound to this same
// account, which re-installs the connection under the unchanged token.
func (c *Cache) TokenBind(accountID model.AccountId, oldToken, newToken model.AccessToken, remote netip.AddrPort, sender EventSender) error {
	c.mu.Lock()
	if existing, exists := c.byToken[newToken]; exists && (oldToken != newToken || existing.AccountID() != accountID) {
		c.mu.Unlock()
		return ErrTokenCollision
	}
	e, ok := c.byID[accountID]
	if !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	if oldToken != "" && oldToken != newToken {
		delete(c.byToken, oldToken)
	}
	c.byToken[newToken] = e
	c.mu.Unlock()

	e.Write(func(entry *Entry) {
		entry.bindConnection(remote, sender)
	})
	return nil
}

// ConnectionDropOptions controls whether ConnectionDrop also removes the
// bound access token in the same critical section (spec.md §4.B).
type ConnectionDropOptions struct {
	RemoveToken model.AccessToken // zero value: keep the token bound
}

// ConnectionDrop clears connection and event-mode fields on the account's
// entry and, if opts.RemoveToken is non-empty, removes that token from the
// secondary map in the same pass.
func (c *Cache) ConnectionDrop(accountID model.AccountId, opts ConnectionDropOptions) error {
	c.mu.RLock()
	e, ok := c.byID[accountID]
	c.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.Write(func(entry *Entry) {
		entry.clearConnection()
	})

	if opts.RemoveToken != "" {
		c.mu.Lock()
		delete(c.byToken, opts.RemoveToken)
		c.mu.Unlock()
	}
	return nil
}

// TokenAndConnectionCheck is the per-request authentication check: a token
// matches only if it exists in the secondary map AND the request's remote
// IP equals the IP recorded at bind time. The port is deliberately ignored
// (spec.md §4.B).
func (c *Cache) TokenAndConnectionCheck(token model.AccessToken, remote netip.Addr) (*Entry, bool) {
	c.mu.RLock()
	e, ok := c.byToken[token]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	var matched bool
	e.Read(func(entry *Entry) {
		bound, has := entry.Connection()
		matched = has && bound.Addr() == remote
	})
	if !matched {
		return nil, false
	}
	return e, true
}

// Remove deletes an account's entry from every map (account deletion).
func (c *Cache) Remove(accountID model.AccountId, token model.AccessToken) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != "" {
		delete(c.byToken, token)
	}
	if e, ok := c.byID[accountID]; ok {
		delete(c.byInternal, e.AccountIdInternal())
	}
	delete(c.byID, accountID)
}

// Len reports the number of accounts currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// ForEach calls fn once per cached entry, e.g. for a process-wide fan-out
// like a news-publish notification. The entries are snapshotted under the
// top-level read lock, which is released before fn runs, so fn may call back
// into Cache; entries inserted or removed meanwhile are not reflected.
func (c *Cache) ForEach(fn func(*Entry)) {
	c.mu.RLock()
	entries := make([]*Entry, 0, len(c.byID))
	for _, e := range c.byID {
		entries = append(entries, e)
	}
	c.mu.RUnlock()
	for _, e := range entries {
		fn(e)
	}
}
