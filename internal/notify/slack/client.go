// Package slack posts moderation-escalation and admin-notification alerts
// to a Slack channel. Grounded on the teacher's pkg/slack (goslack.Client
// wrapper, nil-safe fail-open Service), collapsed from "session
// start/terminal notifications with fingerprint-threaded follow-ups" down
// to single-shot alert posts — this system's moderation queue has no
// analogue of a long-running session to thread replies under.
package slack

import (
	"context"
	"fmt"
	"time"

	goslack "github.com/slack-go/slack"
)

// Client is a thin wrapper around the slack-go SDK.
type Client struct {
	api       *goslack.Client
	channelID string
}

// NewClient creates a Slack API client posting to channelID.
func NewClient(token, channelID string) *Client {
	return &Client{api: goslack.New(token), channelID: channelID}
}

// PostMessage sends blocks to the configured channel.
func (c *Client) PostMessage(ctx context.Context, blocks []goslack.Block, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, _, err := c.api.PostMessageContext(ctx, c.channelID, goslack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("chat.postMessage failed: %w", err)
	}
	return nil
}
