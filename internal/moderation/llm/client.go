// Package llm implements the OpenAI-compatible HTTP client moderation
// verdicts are computed against (spec.md §4.G "LLM path"). Grounded on the
// teacher's pkg/agent/llm_client.go for the request/response envelope
// shape (a conversation of role+content messages in, text out), rebuilt as
// a plain HTTP client since the teacher's actual transport is gRPC to a
// sidecar process that has no place in this system.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client is an OpenAI-compatible chat-completions client.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	model    string
	schedule []time.Duration
}

// Config configures Client.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	// Schedule is the configured retry wait sequence (spec.md §4.G
	// "retries follow a configured schedule") — an explicit list rather
	// than an open-ended exponential backoff, since the moderation LLM
	// call is expected to have a small bounded number of attempts.
	Schedule []time.Duration
}

// New builds a Client. A zero Schedule means no retries: one attempt only.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		schedule: cfg.Schedule,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as a single user message and returns the raw
// completion text, retrying per the configured schedule on transport or
// server errors.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var result string
	sched := &scheduleBackOff{schedule: c.schedule}

	err := backoff.Retry(func() error {
		text, err := c.completeOnce(ctx, prompt)
		if err != nil {
			return err
		}
		result = text
		return nil
	}, backoff.WithContext(sched, ctx))
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}
	return result, nil
}

func (c *Client) completeOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("llm: marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("llm: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("llm: server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", backoff.Permanent(fmt.Errorf("llm: client error: status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("llm: parse response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(fmt.Errorf("llm: empty choices"))
	}
	return parsed.Choices[0].Message.Content, nil
}

// FirstNonEmptyLine returns the first non-blank line of text, trimmed.
// Used to compare the LLM's response against the configured accept token
// (spec.md §4.G "Parse the first non-empty line of the response").
func FirstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// scheduleBackOff replays a fixed list of wait durations, then stops.
type scheduleBackOff struct {
	schedule []time.Duration
	attempt  int
}

func (s *scheduleBackOff) NextBackOff() time.Duration {
	if s.attempt >= len(s.schedule) {
		return backoff.Stop
	}
	d := s.schedule[s.attempt]
	s.attempt++
	return d
}

func (s *scheduleBackOff) Reset() { s.attempt = 0 }
