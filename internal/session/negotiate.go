package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/coder/websocket"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
)

// Negotiate runs handshake steps 2–4 over an already-accepted, already-
// authenticated WebSocket connection (step 1, access-token validation, happens
// before Accept in the HTTP layer) and returns a Session ready for Run,
// already installed as the account's cache entry's event sender (spec.md
// §4.F steps 2–5).
func Negotiate(
	ctx context.Context,
	conn Conn,
	store Store,
	accountCache *cache.Cache,
	accountID model.AccountId,
	accountIDInternal model.AccountIdInternal,
	currentAccessToken model.AccessToken,
	remote netip.AddrPort,
	logger *slog.Logger,
) (*Session, error) {
	decision, err := store.RotationDecision(ctx, accountIDInternal)
	if err != nil {
		return nil, fmt.Errorf("session: rotation decision: %w", err)
	}
	if err := writeByte(ctx, conn, byte(decision)); err != nil {
		return nil, fmt.Errorf("session: send rotation decision: %w", err)
	}

	accessToken := currentAccessToken
	if decision == RotationRequired {
		accessToken, err = rotate(ctx, conn, store, accountIDInternal)
		if err != nil {
			return nil, err
		}
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: read sync versions: %w", err)
	}
	var clientVersions []CategoryVersion
	if len(data) > 0 {
		if err := json.Unmarshal(data, &clientVersions); err != nil {
			return nil, fmt.Errorf("session: parse sync versions: %w", err)
		}
	}

	decisions, err := NegotiateSync(ctx, store, accountIDInternal, clientVersions)
	if err != nil {
		return nil, err
	}

	sess := NewSession(conn, accountIDInternal, logger)
	if err := accountCache.TokenBind(accountID, currentAccessToken, accessToken, remote, sess); err != nil {
		return nil, fmt.Errorf("session: install connection: %w", err)
	}

	for _, d := range decisions {
		kind := string(d.Category) + "Changed"
		if err := sess.SendEvent(kind, nil); err != nil {
			return nil, fmt.Errorf("session: send %s: %w", kind, err)
		}
	}
	if err := sess.flush(ctx); err != nil {
		return nil, fmt.Errorf("session: flush handshake events: %w", err)
	}

	return sess, nil
}

func rotate(ctx context.Context, conn Conn, store Store, accountIDInternal model.AccountIdInternal) (model.AccessToken, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("session: read current refresh token: %w", err)
	}
	rotated, err := store.RotateTokens(ctx, accountIDInternal, model.RefreshToken(data))
	if err != nil {
		return "", fmt.Errorf("session: rotate tokens: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageBinary, []byte(rotated.RefreshToken)); err != nil {
		return "", fmt.Errorf("session: send new refresh token: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageBinary, []byte(rotated.AccessToken)); err != nil {
		return "", fmt.Errorf("session: send new access token: %w", err)
	}
	return rotated.AccessToken, nil
}

func writeByte(ctx context.Context, conn Conn, b byte) error {
	return conn.Write(ctx, websocket.MessageBinary, []byte{b})
}
