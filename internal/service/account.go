package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
)

// AccountStore is the general CRUD surface AccountService needs from
// store.Repository.
type AccountStore interface {
	CreateAccount(ctx context.Context, token model.AccessToken) (AccountRow, error)
	SetAccountState(ctx context.Context, id model.AccountIdInternal, next model.AccountState) error
	RequestDeletion(ctx context.Context, id model.AccountIdInternal, at time.Time) error
	CancelDeletion(ctx context.Context, id model.AccountIdInternal) error
}

// AccountRow mirrors store.AccountRow.
type AccountRow struct {
	InternalID model.AccountIdInternal
	AccountID  model.AccountId
	State      model.AccountState
	HasToken   bool
	Token      model.AccessToken
}

// deletionGracePeriod is how long a pending-deletion account may still
// cancel before it is eligible for purge (spec.md §3 "AccountState").
const deletionGracePeriod = 14 * 24 * time.Hour

// AccountService implements account lifecycle operations: first-contact
// creation and state transitions, validated against
// model.AccountState.CanTransitionTo before ever reaching the store.
type AccountService struct {
	store AccountStore
	cache *cache.Cache
}

// NewAccountService wires the store and the process-wide cache, which it
// keeps write-through with every state transition (spec.md §4.B).
func NewAccountService(store AccountStore, c *cache.Cache) *AccountService {
	return &AccountService{store: store, cache: c}
}

// Create bootstraps a brand-new account with a freshly issued access token
// and seeds the cache with it, so the first WebSocket handshake can
// authenticate immediately without a cache-miss round trip.
func (s *AccountService) Create(ctx context.Context) (AccountRow, error) {
	token, err := newBootstrapToken()
	if err != nil {
		return AccountRow{}, fmt.Errorf("service: generate bootstrap token: %w", err)
	}
	row, err := s.store.CreateAccount(ctx, token)
	if err != nil {
		return AccountRow{}, fmt.Errorf("service: create account: %w", err)
	}
	s.cache.Insert(row.InternalID, row.AccountID, row.Token, cache.SharedState{
		AccountState: row.State,
		Visibility:   model.VisibilityPendingPublic,
	})
	return AccountRow(row), nil
}

// RequestDeletion transitions an account to PendingDeletion, starting its
// grace period.
func (s *AccountService) RequestDeletion(ctx context.Context, id model.AccountIdInternal, current model.AccountState) error {
	if !current.CanTransitionTo(model.AccountStatePendingDeletion) {
		return fmt.Errorf("%w: cannot request deletion from %s", ErrStateNotAcceptable, current)
	}
	at := time.Now().Add(deletionGracePeriod)
	if err := s.store.RequestDeletion(ctx, id, at); err != nil {
		return fmt.Errorf("service: request deletion: %w", err)
	}
	s.updateCacheState(id, model.AccountStatePendingDeletion)
	return nil
}

// CancelDeletion reverts a PendingDeletion account back to Normal within
// its grace period.
func (s *AccountService) CancelDeletion(ctx context.Context, id model.AccountIdInternal, current model.AccountState) error {
	if current != model.AccountStatePendingDeletion {
		return fmt.Errorf("%w: account is not pending deletion", ErrStateNotAcceptable)
	}
	if err := s.store.CancelDeletion(ctx, id); err != nil {
		return fmt.Errorf("service: cancel deletion: %w", err)
	}
	s.updateCacheState(id, model.AccountStateNormal)
	return nil
}

// Ban transitions an account to Banned; used by moderation-admin review.
func (s *AccountService) Ban(ctx context.Context, id model.AccountIdInternal, current model.AccountState) error {
	if !current.CanTransitionTo(model.AccountStateBanned) {
		return fmt.Errorf("%w: cannot ban from %s", ErrStateNotAcceptable, current)
	}
	if err := s.store.SetAccountState(ctx, id, model.AccountStateBanned); err != nil {
		return fmt.Errorf("service: ban account: %w", err)
	}
	s.updateCacheState(id, model.AccountStateBanned)
	return nil
}

// newBootstrapToken issues the raw access token handed back to the client
// on account creation; the store hashes nothing for access tokens (unlike
// refresh tokens, see session_adapter.go), so the returned value is both
// what the client holds and what gets persisted.
func newBootstrapToken() (model.AccessToken, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return model.AccessToken(base64.RawURLEncoding.EncodeToString(buf)), nil
}

func (s *AccountService) updateCacheState(id model.AccountIdInternal, next model.AccountState) {
	entry, ok := s.cache.LookupInternal(id)
	if !ok {
		return
	}
	entry.Write(func(e *cache.Entry) {
		shared := e.Shared()
		shared.AccountState = next
		e.SetShared(shared)
	})
}
