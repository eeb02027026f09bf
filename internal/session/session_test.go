package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	writes  [][]byte
	pings   int
	readErr chan error
}

func newFakeConn() *fakeConn {
	return &fakeConn{readErr: make(chan error, 1)}
}

func (f *fakeConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case err := <-f.readErr:
		return websocket.MessageText, nil, err
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (f *fakeConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), data...)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeConn) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return nil
}

func (f *fakeConn) Close(code websocket.StatusCode, reason string) error { return nil }

func (f *fakeConn) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func TestSessionSendEventCoalescesByKindBeforeFlush(t *testing.T) {
	conn := newFakeConn()
	sess := NewSession(conn, 1, nil)

	require.NoError(t, sess.SendEvent("newMessage", map[string]int{"n": 1}))
	require.NoError(t, sess.SendEvent("newMessage", map[string]int{"n": 2}))

	require.NoError(t, sess.flush(context.Background()))

	require.Equal(t, 1, conn.writeCount())

	var decoded struct {
		Kind    string         `json:"kind"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(conn.writes[0][:len(conn.writes[0])-1], &decoded))
	assert.Equal(t, "newMessage", decoded.Kind)
	assert.Equal(t, 2, decoded.Payload["n"])
}

func TestSessionRunStopsOnContextCancel(t *testing.T) {
	conn := newFakeConn()
	sess := NewSession(conn, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
