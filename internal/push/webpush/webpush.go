// Package webpush implements the Web Push adapter: a JSON {id,title,body}
// payload delivered through github.com/SherClockHolmes/webpush-go (which
// itself performs the RFC 8291 AES-128-GCM payload encryption), with the
// push service's HTTP response classified into the shared internal/push
// retry state machine (spec.md §4.E "Web Push specifics").
package webpush

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/afrodite-backend/corectl/internal/push"
)

// Config carries the VAPID key pair used to authenticate with push
// services, and the contact URI required by the VAPID spec.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string // mailto: or https: contact URI
}

// Client is the push.Sender implementation for Web Push.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client { return &Client{cfg: cfg} }

func (c *Client) Provider() push.Provider { return push.ProviderWebPush }

type wireMessage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send encodes n as {id,title,body} JSON; webpush-go encrypts it per
// RFC 8291 using token's subscription keys before delivery. The collapse
// id doubles as the dedup topic (spec.md: "topic string deduplicates at
// the push service").
func (c *Client) Send(ctx context.Context, token push.DeviceToken, _ []byte, n push.Notification) push.Attempt {
	payload, err := json.Marshal(wireMessage{ID: n.CollapseID, Title: n.Title, Body: n.Body})
	if err != nil {
		return push.Attempt{Outcome: push.OutcomePermanentConfigError}
	}

	sub := &wp.Subscription{
		Endpoint: token.Token,
		Keys: wp.Keys{
			P256dh: token.WebPushP256dh,
			Auth:   token.WebPushAuth,
		},
	}

	// webpush-go has no context-aware send variant; ctx still bounds the
	// outer retry loop's sleeps between attempts.
	resp, err := wp.SendNotification(payload, sub, &wp.Options{
		Subscriber:      c.cfg.Subscriber,
		VAPIDPublicKey:  c.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: c.cfg.VAPIDPrivateKey,
		TTL:             60,
		Topic:           n.CollapseID,
		Urgency:         wp.UrgencyNormal,
	})
	if err != nil {
		return push.Attempt{Outcome: push.OutcomeNetworkError}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return push.Attempt{Outcome: push.OutcomeSuccess}
	case resp.StatusCode == 404 || resp.StatusCode == 410:
		return push.Attempt{Outcome: push.OutcomeUnregistered}
	case resp.StatusCode == 400 || resp.StatusCode == 413:
		return push.Attempt{Outcome: push.OutcomePermanentConfigError}
	case resp.StatusCode == 429:
		wait := time.Second
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				wait = time.Duration(secs) * time.Second
			}
		}
		return push.Attempt{Outcome: push.OutcomeThrottled, RecommendedWait: wait}
	case resp.StatusCode >= 500:
		return push.Attempt{Outcome: push.OutcomeTransientServer, RecommendedWait: 10 * time.Second}
	default:
		return push.Attempt{Outcome: push.OutcomeUnknown, RecommendedWait: 0}
	}
}
