// Package session implements the authenticated WebSocket handshake and
// event-streaming phase described in spec.md §4.F: subprotocol parsing,
// optional refresh/access token rotation, per-category sync negotiation,
// and a ping-and-coalesce event loop. Grounded on the teacher's
// pkg/events.ConnectionManager (coder/websocket read loop, write-timeout-
// guarded sends, register/unregister-on-defer connection lifecycle).
package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/afrodite-backend/corectl/internal/model"
)

// ClientType identifies the connecting client's platform, carried in the
// subprotocol string alongside its semver.
type ClientType string

// ClientVersion is the client's reported semver triple.
type ClientVersion struct {
	Major, Minor, Patch int
}

// Handshake is the parsed subprotocol value: `v{proto}, t{accessToken},
// c{clientType}_{major}_{minor}_{patch}` (spec.md §6 "Wire: WebSocket").
type Handshake struct {
	ProtocolVersion int
	AccessToken     model.AccessToken
	ClientType      ClientType
	ClientVersion   ClientVersion
}

// ParseHandshake parses the three comma-separated subprotocol tokens coder/
// websocket hands back via Conn.Subprotocol() once negotiation picks one of
// the client's offered values.
func ParseHandshake(subprotocol string) (Handshake, error) {
	parts := strings.Split(subprotocol, ",")
	if len(parts) != 3 {
		return Handshake{}, fmt.Errorf("session: expected 3 subprotocol parts, got %d", len(parts))
	}

	var h Handshake
	for i, raw := range parts {
		token := strings.TrimSpace(raw)
		if token == "" {
			return Handshake{}, fmt.Errorf("session: empty subprotocol part %d", i)
		}
		switch token[0] {
		case 'v':
			v, err := strconv.Atoi(token[1:])
			if err != nil {
				return Handshake{}, fmt.Errorf("session: bad protocol version %q: %w", token, err)
			}
			h.ProtocolVersion = v
		case 't':
			h.AccessToken = model.AccessToken(token[1:])
		case 'c':
			clientType, version, err := parseClientToken(token[1:])
			if err != nil {
				return Handshake{}, err
			}
			h.ClientType = clientType
			h.ClientVersion = version
		default:
			return Handshake{}, fmt.Errorf("session: unrecognised subprotocol part %q", token)
		}
	}

	if h.AccessToken == "" {
		return Handshake{}, fmt.Errorf("session: missing access token in subprotocol")
	}
	return h, nil
}

func parseClientToken(s string) (ClientType, ClientVersion, error) {
	segments := strings.Split(s, "_")
	if len(segments) != 4 {
		return "", ClientVersion{}, fmt.Errorf("session: bad client token %q", s)
	}
	nums := make([]int, 3)
	for i, seg := range segments[1:] {
		n, err := strconv.Atoi(seg)
		if err != nil {
			return "", ClientVersion{}, fmt.Errorf("session: bad client version segment %q: %w", seg, err)
		}
		nums[i] = n
	}
	return ClientType(segments[0]), ClientVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// CategoryVersion is one entry of the client's reported sync state,
// exchanged in handshake step 4.
type CategoryVersion struct {
	Category model.DataCategory
	Version  model.SyncVersion
}
