package slack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goslack "github.com/slack-go/slack"
)

func blockText(t *testing.T, blocks []goslack.Block) string {
	t.Helper()
	require.Len(t, blocks, 1)
	section, ok := blocks[0].(*goslack.SectionBlock)
	require.True(t, ok)
	return section.Text.Text
}

func TestBuildModerationEscalatedMessageIncludesReason(t *testing.T) {
	blocks := BuildModerationEscalatedMessage("item-1", "profile_text", "contains slur")
	text := blockText(t, blocks)
	assert.Contains(t, text, "item-1")
	assert.Contains(t, text, "profile_text")
	assert.Contains(t, text, "contains slur")
}

func TestBuildAdminMessageOmitsEmptyBody(t *testing.T) {
	blocks := BuildAdminMessage("Server restarting", "")
	text := blockText(t, blocks)
	assert.Contains(t, text, "Server restarting")
}

func TestTruncateCapsLength(t *testing.T) {
	long := strings.Repeat("x", maxBlockTextLength+500)
	out := truncate(long)
	assert.LessOrEqual(t, len(out), maxBlockTextLength+len("…"))
}
