package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
)

// writeTimeout bounds every individual frame write, matching the teacher's
// pkg/events.ConnectionManager.sendRaw's write-timeout-guarded send.
const writeTimeout = 10 * time.Second

// pingInterval keeps the connection alive during idle periods (spec.md
// §4.F "A 60s ping keeps the connection alive").
const pingInterval = 60 * time.Second

// Conn is the subset of *websocket.Conn the session loop needs, narrowed
// for testability.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
}

// Session owns one authenticated WebSocket connection's event-streaming
// phase. It implements cache.EventSender so the handshake can install it
// as the account's entry's send handle.
type Session struct {
	conn      Conn
	accountID model.AccountIdInternal
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]any // coalesced by event kind
	wake    chan struct{}
}

// NewSession wraps conn for accountID's event-streaming phase.
func NewSession(conn Conn, accountID model.AccountIdInternal, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conn:      conn,
		accountID: accountID,
		logger:    logger,
		pending:   make(map[string]any),
		wake:      make(chan struct{}, 1),
	}
}

// SendEvent implements cache.EventSender. It coalesces by kind: a second
// event of the same kind arriving before the first is flushed replaces it
// (spec.md §4.F "events ... are coalesced by kind").
func (s *Session) SendEvent(kind string, payload any) error {
	s.mu.Lock()
	s.pending[kind] = payload
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

var _ cache.EventSender = (*Session)(nil)

// Run drives the event-streaming phase: a read loop that only watches for
// connection close (client-originated messages after the handshake are
// limited to protocol-level pings, per spec.md §6), and a write loop that
// flushes coalesced events and sends periodic pings. Returns when ctx is
// cancelled or either loop errors.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.writeLoop(ctx) })
	return g.Wait()
}

// Disconnect clears the account's connection and event-mode fields in the
// cache (spec.md §4.F "Disconnection"). Pending events stay in the
// account's flags for push delivery to pick up later. Call once Run
// returns, regardless of why.
func Disconnect(c *cache.Cache, accountID model.AccountId) error {
	return c.ConnectionDrop(accountID, cache.ConnectionDropOptions{})
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		if _, _, err := s.conn.Read(ctx); err != nil {
			return fmt.Errorf("session: read: %w", err)
		}
	}
}

func (s *Session) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("session: ping: %w", err)
			}
		case <-s.wake:
			if err := s.flush(ctx); err != nil {
				return err
			}
		}
	}
}

// flush drains every coalesced pending event and writes each as its own
// newline-terminated JSON text frame (spec.md §4.F "newline-delimited JSON
// events").
func (s *Session) flush(ctx context.Context) error {
	s.mu.Lock()
	events := s.pending
	s.pending = make(map[string]any)
	s.mu.Unlock()

	for kind, payload := range events {
		data, err := json.Marshal(struct {
			Kind    string `json:"kind"`
			Payload any    `json:"payload"`
		}{Kind: kind, Payload: payload})
		if err != nil {
			s.logger.Error("session: marshal event failed", "kind", kind, "error", err)
			continue
		}
		data = append(data, '\n')

		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = s.conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return fmt.Errorf("session: write %s event: %w", kind, err)
		}
	}
	return nil
}
