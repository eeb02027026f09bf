// Package apns implements the APNs push-notification adapter: AES-128-GCM
// payload encryption, HTTP/2 delivery, and the provider-specific status-code
// classification feeding the shared internal/push retry state machine.
// Grounded on original_source/crates/server_common/src/push_notifications/
// apns.rs (ApnsSendingLogic.send_push_notification_internal's exact status
// mapping and create_notification's encrypted-payload shape), reimplemented
// over net/http since no APNs HTTP/2 client exists anywhere in the example
// pack (the Rust original uses the `a2` crate, which has no Go equivalent
// here).
package apns

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/afrodite-backend/corectl/internal/push"
)

// Config configures the APNs HTTP/2 client.
type Config struct {
	// Certificate is the APNs provider TLS client certificate used for
	// connection-level authentication (the cert-based alternative to a
	// JWT provider token).
	Certificate tls.Certificate
	Production  bool
	Topic       string
}

func endpoint(production bool) string {
	if production {
		return "https://api.push.apple.com"
	}
	return "https://api.sandbox.push.apple.com"
}

// Client is the push.Sender implementation for APNs.
type Client struct {
	http  *http.Client
	base  string
	topic string
}

// New builds a Client. The returned http.Client negotiates HTTP/2
// automatically over the TLS client certificate (required by APNs' HTTP/2
// API), per stdlib's default transport behavior for https.
func New(cfg Config) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cfg.Certificate},
		},
	}
	return &Client{
		http:  &http.Client{Transport: transport, Timeout: 20 * time.Second},
		base:  endpoint(cfg.Production),
		topic: cfg.Topic,
	}
}

func (c *Client) Provider() push.Provider { return push.ProviderAPNs }

// payload mirrors create_notification's shape: the cleartext alert only
// carries the decrypt-failure title; real content rides encrypted.
type aps struct {
	Alert struct {
		Title string `json:"title"`
	} `json:"alert"`
	MutableContent int `json:"mutable-content"`
}

type wirePayload struct {
	Aps       aps    `json:"aps"`
	ID        string `json:"id"`
	Encrypted string `json:"encrypted"`
	Nonce     string `json:"nonce"`
}

const decryptFailureTitle = "Notification decrypting failed"

// Send encrypts n with key and POSTs it to APNs, classifying the response
// into a push.Attempt per the status table grounded on apns.rs.
func (c *Client) Send(ctx context.Context, token push.DeviceToken, key []byte, n push.Notification) push.Attempt {
	body, err := encryptPayload(key, n)
	if err != nil {
		return push.Attempt{Outcome: push.OutcomePermanentConfigError}
	}

	url := fmt.Sprintf("%s/3/device/%s", c.base, token.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return push.Attempt{Outcome: push.OutcomeUnknown}
	}
	req.Header.Set("apns-topic", c.topic)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("apns-priority", "10")
	if n.CollapseID != "" {
		req.Header.Set("apns-collapse-id", n.CollapseID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return push.Attempt{Outcome: push.OutcomeNetworkError}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return push.Attempt{Outcome: push.OutcomeSuccess}
	case 410:
		return push.Attempt{Outcome: push.OutcomeUnregistered}
	case 400, 403, 405, 413:
		return push.Attempt{Outcome: push.OutcomePermanentConfigError}
	case 429:
		return push.Attempt{Outcome: push.OutcomeThrottled, RecommendedWait: time.Second}
	case 500, 503:
		return push.Attempt{Outcome: push.OutcomeTransientServer, RecommendedWait: 15 * time.Minute}
	default:
		// apns.rs logs and returns Ok(()) (no retry) for any other status;
		// from the shared state machine's point of view that is a
		// terminal success since nothing further can be done for it.
		return push.Attempt{Outcome: push.OutcomeSuccess}
	}
}

// encryptPayload builds the wire JSON: AES-128-GCM over the notification's
// visible fields, base64 ciphertext/nonce in custom fields, cleartext title
// fixed to the decrypt-failure string (spec.md §4.E "APNs specifics").
func encryptPayload(key []byte, n push.Notification) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("apns: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("apns: gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("apns: nonce: %w", err)
	}

	type content struct {
		Title     string            `json:"title"`
		Body      string            `json:"body"`
		ClearOnly bool              `json:"clearOnly,omitempty"`
		Data      map[string]string `json:"data,omitempty"`
	}
	plain, err := json.Marshal(content{Title: n.Title, Body: n.Body, ClearOnly: n.ClearOnly, Data: n.Data})
	if err != nil {
		return nil, fmt.Errorf("apns: marshal content: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plain, nil)

	var w wirePayload
	w.Aps.Alert.Title = decryptFailureTitle
	w.Aps.MutableContent = 1
	w.ID = n.CollapseID
	w.Encrypted = base64.StdEncoding.EncodeToString(ciphertext)
	w.Nonce = base64.StdEncoding.EncodeToString(nonce)

	return json.Marshal(w)
}
