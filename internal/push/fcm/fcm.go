// Package fcm implements the Firebase Cloud Messaging push-notification
// adapter: OAuth2 bearer-token auth via golang.org/x/oauth2/google, a
// data-only HTTP v1 message, and FCM's recommended-action error response
// classified into the shared internal/push retry state machine. Grounded
// on original_source/crates/server_common/src/push_notifications/fcm.rs
// (its RecomendedAction match arms and Data-only/high-priority message
// shape).
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/afrodite-backend/corectl/internal/push"
)

// Config configures the FCM HTTP v1 client.
type Config struct {
	ProjectID          string
	ServiceAccountJSON []byte
}

// Client is the push.Sender implementation for FCM.
type Client struct {
	http      *http.Client
	projectID string
}

// New builds a Client authenticated with the Firebase messaging scope.
func New(ctx context.Context, cfg Config) (*Client, error) {
	creds, err := google.CredentialsFromJSON(ctx, cfg.ServiceAccountJSON,
		"https://www.googleapis.com/auth/firebase.messaging")
	if err != nil {
		return nil, fmt.Errorf("fcm: credentials: %w", err)
	}
	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	httpClient.Timeout = 20 * time.Second
	return &Client{http: httpClient, projectID: cfg.ProjectID}, nil
}

// fcmMessage is the data-only HTTP v1 wire message (no `notification`
// block — spec.md §4.E "FCM specifics").
type fcmMessage struct {
	Message struct {
		Token   string            `json:"token"`
		Data    map[string]string `json:"data"`
		Android struct {
			Priority    string `json:"priority"`
			CollapseKey string `json:"collapse_key"`
		} `json:"android"`
	} `json:"message"`
}

func (c *Client) Provider() push.Provider { return push.ProviderFCM }

// Send POSTs n as a data-only FCM v1 message and classifies the response.
func (c *Client) Send(ctx context.Context, token push.DeviceToken, _ []byte, n push.Notification) push.Attempt {
	var msg fcmMessage
	msg.Message.Token = token.Token
	msg.Message.Data = dataPayload(n)
	msg.Message.Android.Priority = "high"
	msg.Message.Android.CollapseKey = "0" // fixed so messages replace each other

	body, err := json.Marshal(msg)
	if err != nil {
		return push.Attempt{Outcome: push.OutcomePermanentConfigError}
	}

	url := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return push.Attempt{Outcome: push.OutcomeUnknown}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return push.Attempt{Outcome: push.OutcomeNetworkError}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return push.Attempt{Outcome: push.OutcomeSuccess}
	case 404:
		return push.Attempt{Outcome: push.OutcomeUnregistered}
	case 401, 400:
		// UNAUTHENTICATED / INVALID_ARGUMENT (bad credentials or sender-id
		// mismatch in fcm.rs) — nothing a retry fixes.
		return push.Attempt{Outcome: push.OutcomePermanentConfigError}
	case 429:
		return push.Attempt{Outcome: push.OutcomeThrottled, RecommendedWait: time.Second}
	case 500, 503:
		return push.Attempt{Outcome: push.OutcomeTransientServer, RecommendedWait: 10 * time.Second}
	default:
		return push.Attempt{Outcome: push.OutcomeUnknown}
	}
}

func dataPayload(n push.Notification) map[string]string {
	data := map[string]string{
		"collapseId": n.CollapseID,
		"title":      n.Title,
		"body":       n.Body,
	}
	for k, v := range n.Data {
		data[k] = v
	}
	return data
}
