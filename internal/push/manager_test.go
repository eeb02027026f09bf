package push

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/model"
)

type fakeState struct {
	mu      sync.Mutex
	flags   map[model.AccountIdInternal]model.PendingFlags
	tokens  map[model.AccountIdInternal]DeviceToken
	removed []model.AccountIdInternal
}

func newFakeState() *fakeState {
	return &fakeState{
		flags:  make(map[model.AccountIdInternal]model.PendingFlags),
		tokens: make(map[model.AccountIdInternal]DeviceToken),
	}
}

func (f *fakeState) DrainPendingFlags(accountID model.AccountIdInternal) model.PendingFlags {
	f.mu.Lock()
	defer f.mu.Unlock()
	flags := f.flags[accountID]
	f.flags[accountID] = 0
	return flags
}

func (f *fakeState) BuildNotification(_ model.AccountIdInternal, flag model.NotificationFlag) Notification {
	return Notification{CollapseID: "c", Title: "t", Body: "b"}
}

func (f *fakeState) DeviceToken(accountID model.AccountIdInternal, _ Provider) (DeviceToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[accountID]
	return tok, ok
}

func (f *fakeState) RemoveDeviceToken(accountID model.AccountIdInternal, _ Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, accountID)
	f.removed = append(f.removed, accountID)
	return nil
}

func (f *fakeState) APNsEncryptionKey(model.AccountIdInternal) ([]byte, bool) {
	return []byte("0123456789abcdef"), true
}

type fakeSender struct {
	provider Provider
	mu       sync.Mutex
	sent     int
	outcome  Attempt
}

func (s *fakeSender) Provider() Provider { return s.provider }

func (s *fakeSender) Send(context.Context, DeviceToken, []byte, Notification) Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
	return s.outcome
}

func TestManagerWakeDeliversAndRemovesTokenOnUnregistered(t *testing.T) {
	state := newFakeState()
	state.tokens[1] = DeviceToken{Provider: ProviderFCM, Token: "dev"}
	state.flags[1] = model.PendingFlags(0).Set(model.FlagNewMessage)

	sender := &fakeSender{provider: ProviderFCM, outcome: Attempt{Outcome: OutcomeUnregistered}}
	m := NewManager(state, nil, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Wake(1)

	require.Eventually(t, func() bool {
		state.mu.Lock()
		defer state.mu.Unlock()
		return len(state.removed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 1, sender.sent)
}

func TestManagerWakeSkipsAccountWithNoDeviceToken(t *testing.T) {
	state := newFakeState()
	state.flags[2] = model.PendingFlags(0).Set(model.FlagNewMessage)

	sender := &fakeSender{provider: ProviderFCM, outcome: Attempt{Outcome: OutcomeSuccess}}
	m := NewManager(state, nil, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Wake(2)
	time.Sleep(50 * time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 0, sender.sent)
}

func TestManagerDisablesProviderAfterPermanentConfigError(t *testing.T) {
	state := newFakeState()
	state.tokens[3] = DeviceToken{Provider: ProviderFCM, Token: "dev"}
	state.flags[3] = model.PendingFlags(0).Set(model.FlagNewMessage)

	sender := &fakeSender{provider: ProviderFCM, outcome: Attempt{Outcome: OutcomePermanentConfigError}}
	m := NewManager(state, nil, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Wake(3)
	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return sender.sent == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A second wake must no-op: the worker is now dormant.
	state.flags[3] = model.PendingFlags(0).Set(model.FlagNewMessage)
	m.Wake(3)
	time.Sleep(50 * time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 1, sender.sent)
}
