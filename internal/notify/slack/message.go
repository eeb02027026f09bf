package slack

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

const maxBlockTextLength = 2900

func truncate(s string) string {
	if len(s) <= maxBlockTextLength {
		return s
	}
	return s[:maxBlockTextLength] + "…"
}

// BuildModerationEscalatedMessage builds the Block Kit payload for a
// moderation item the worker escalated instead of auto-rejecting.
func BuildModerationEscalatedMessage(itemID, contentType, reason string) []goslack.Block {
	text := fmt.Sprintf(":rotating_light: *Moderation escalated* (%s)\nItem: `%s`", contentType, itemID)
	if reason != "" {
		text += fmt.Sprintf("\n*Reason:* %s", truncate(reason))
	}
	return []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}
}

// BuildAdminMessage builds the Block Kit payload for a generic admin
// notification (spec.md's AdminNotification pending flag).
func BuildAdminMessage(subject, body string) []goslack.Block {
	text := fmt.Sprintf(":bell: *%s*", subject)
	if body != "" {
		text += "\n" + truncate(body)
	}
	return []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}
}
