package eventbus

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/content"
	"github.com/afrodite-backend/corectl/internal/model"
)

type fakeSender struct {
	events []sentEvent
	err    error
}

type sentEvent struct {
	kind    string
	payload any
}

func (f *fakeSender) SendEvent(kind string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, sentEvent{kind, payload})
	return nil
}

type fakePusher struct {
	woken []model.AccountIdInternal
}

func (f *fakePusher) Wake(accountID model.AccountIdInternal) {
	f.woken = append(f.woken, accountID)
}

func newTestCache(t *testing.T, internalID model.AccountIdInternal) (*cache.Cache, model.AccountId) {
	t.Helper()
	c := cache.New()
	accountID := model.NewAccountId()
	c.Insert(internalID, accountID, "", cache.SharedState{})
	return c, accountID
}

func TestSendConnectedEventDeliversLiveWhenConnected(t *testing.T) {
	c, accountID := newTestCache(t, 1)
	sender := &fakeSender{}
	remote := netip.MustParseAddrPort("10.0.0.1:9999")
	require.NoError(t, c.TokenBind(accountID, "", "tok", remote, sender))

	pusher := &fakePusher{}
	bus := New(c, pusher, nil)

	bus.SendConnectedEvent(1, KindNewMessage, map[string]string{"from": "x"}, model.FlagNewMessage)

	require.Len(t, sender.events, 1)
	assert.Equal(t, KindNewMessage, sender.events[0].kind)
	assert.Empty(t, pusher.woken)
}

func TestSendConnectedEventFallsBackToPushWhenDisconnected(t *testing.T) {
	c, _ := newTestCache(t, 2)

	pusher := &fakePusher{}
	bus := New(c, pusher, nil)

	bus.SendConnectedEvent(2, KindLikesChanged, nil, model.FlagLikesChanged)

	entry, ok := c.LookupInternal(2)
	require.True(t, ok)
	var shared cache.SharedState
	entry.Read(func(e *cache.Entry) { shared = e.Shared() })
	assert.True(t, shared.PendingPush.Has(model.FlagLikesChanged))
	assert.Equal(t, []model.AccountIdInternal{2}, pusher.woken)
}

func TestSendConnectedEventFallsBackToPushWhenLiveSendFails(t *testing.T) {
	c, accountID := newTestCache(t, 3)
	sender := &fakeSender{err: errors.New("socket closed")}
	remote := netip.MustParseAddrPort("10.0.0.2:1111")
	require.NoError(t, c.TokenBind(accountID, "", "tok", remote, sender))

	pusher := &fakePusher{}
	bus := New(c, pusher, nil)

	bus.SendConnectedEvent(3, KindNewsChanged, nil, model.FlagNewsChanged)

	entry, _ := c.LookupInternal(3)
	var shared cache.SharedState
	entry.Read(func(e *cache.Entry) { shared = e.Shared() })
	assert.True(t, shared.PendingPush.Has(model.FlagNewsChanged))
	assert.Equal(t, []model.AccountIdInternal{3}, pusher.woken)
}

func TestSendConnectedEventUnknownAccountIsNoop(t *testing.T) {
	c := cache.New()
	pusher := &fakePusher{}
	bus := New(c, pusher, nil)

	bus.SendConnectedEvent(99, KindAdminNotification, nil, model.FlagAdminNotification)

	assert.Empty(t, pusher.woken)
}

func TestPublishProcessingStateDeliversLiveOnlyAndNeverFallsBack(t *testing.T) {
	c, _ := newTestCache(t, 4)
	pusher := &fakePusher{}
	bus := New(c, pusher, nil)

	bus.PublishProcessingState(4, content.ProcessingState{})

	assert.Empty(t, pusher.woken)

	entry, _ := c.LookupInternal(4)
	var shared cache.SharedState
	entry.Read(func(e *cache.Entry) { shared = e.Shared() })
	assert.True(t, shared.PendingPush.Empty())
}
