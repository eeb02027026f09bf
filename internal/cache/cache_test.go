package cache

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/model"
)

func newSeededCache(t *testing.T) (*Cache, model.AccountId, model.AccessToken) {
	t.Helper()
	c := New()
	accountID := model.NewAccountId()
	token := model.AccessToken("initial-token")
	c.Load([]AccountSeed{{
		InternalID:  1,
		AccountID:   accountID,
		AccessToken: token,
		Shared:      SharedState{AccountState: model.AccountStateNormal},
	}})
	return c, accountID, token
}

func TestCacheLookupByToken(t *testing.T) {
	c, accountID, token := newSeededCache(t)

	e, ok := c.LookupByToken(token)
	require.True(t, ok)
	assert.Equal(t, accountID, e.AccountID())

	_, ok = c.LookupByToken("no-such-token")
	assert.False(t, ok)
}

func TestTokenBindMovesEntryAndRecordsAddress(t *testing.T) {
	c, accountID, oldToken := newSeededCache(t)
	remote := netip.MustParseAddrPort("203.0.113.7:51000")

	require.NoError(t, c.TokenBind(accountID, oldToken, "new-token", remote, nil))

	_, ok := c.LookupByToken(oldToken)
	assert.False(t, ok, "old token must no longer resolve")

	e, ok := c.LookupByToken("new-token")
	require.True(t, ok)

	bound, has := e.Connection()
	require.True(t, has)
	assert.Equal(t, remote, bound)
}

func TestTokenBindRejectsCollision(t *testing.T) {
	c := New()
	accountA := model.NewAccountId()
	accountB := model.NewAccountId()
	c.Load([]AccountSeed{
		{InternalID: 1, AccountID: accountA, AccessToken: "token-a"},
		{InternalID: 2, AccountID: accountB, AccessToken: "token-b"},
	})

	remote := netip.MustParseAddrPort("198.51.100.1:9000")
	err := c.TokenBind(accountA, "token-a", "token-b", remote, nil)
	assert.ErrorIs(t, err, ErrTokenCollision)
}

func TestConnectionDropClearsFieldsAndOptionallyToken(t *testing.T) {
	c, accountID, token := newSeededCache(t)
	remote := netip.MustParseAddrPort("192.0.2.1:4000")
	require.NoError(t, c.TokenBind(accountID, token, token, remote, nil))

	require.NoError(t, c.ConnectionDrop(accountID, ConnectionDropOptions{RemoveToken: token}))

	_, ok := c.LookupByToken(token)
	assert.False(t, ok)

	e, ok := c.Lookup(accountID)
	require.True(t, ok)
	_, has := e.Connection()
	assert.False(t, has)
}

func TestTokenAndConnectionCheckIgnoresPort(t *testing.T) {
	c, accountID, token := newSeededCache(t)
	bindAddr := netip.MustParseAddrPort("203.0.113.7:51000")
	require.NoError(t, c.TokenBind(accountID, token, token, bindAddr, nil))

	// Same IP, different port: must still match (port is deliberately ignored).
	requestAddr := netip.MustParseAddr("203.0.113.7")
	_, ok := c.TokenAndConnectionCheck(token, requestAddr)
	assert.True(t, ok)

	otherAddr := netip.MustParseAddr("203.0.113.8")
	_, ok = c.TokenAndConnectionCheck(token, otherAddr)
	assert.False(t, ok)
}

func TestTokenBindSameTokenTwiceReinstallsConnectionWithoutCollision(t *testing.T) {
	c, accountID, token := newSeededCache(t)
	first := netip.MustParseAddrPort("203.0.113.7:51000")
	second := netip.MustParseAddrPort("203.0.113.7:52000")

	require.NoError(t, c.TokenBind(accountID, token, token, first, nil))
	require.NoError(t, c.TokenBind(accountID, token, token, second, nil))

	e, ok := c.LookupByToken(token)
	require.True(t, ok)
	bound, has := e.Connection()
	require.True(t, has)
	assert.Equal(t, second, bound)
}

func TestForEachVisitsEveryCachedEntryExactlyOnce(t *testing.T) {
	c := New()
	accountA := model.NewAccountId()
	accountB := model.NewAccountId()
	c.Load([]AccountSeed{
		{InternalID: 1, AccountID: accountA, AccessToken: "token-a"},
		{InternalID: 2, AccountID: accountB, AccessToken: "token-b"},
	})

	seen := make(map[model.AccountId]int)
	c.ForEach(func(e *Entry) {
		seen[e.AccountID()]++
	})

	assert.Equal(t, map[model.AccountId]int{accountA: 1, accountB: 1}, seen)
}

func TestInvariantTokenMapEntryAlwaysInPrimaryMap(t *testing.T) {
	c, accountID, token := newSeededCache(t)

	tokenEntry, ok := c.LookupByToken(token)
	require.True(t, ok)

	idEntry, ok := c.Lookup(accountID)
	require.True(t, ok)

	assert.Same(t, idEntry, tokenEntry)
}
