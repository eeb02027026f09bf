package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactMasksAccessToken(t *testing.T) {
	r := New()
	in := `login failed: access_token=abcdefghijklmnop for account 42`
	out := r.Redact(in)
	assert.Contains(t, out, "[MASKED_ACCESS_TOKEN]")
	assert.NotContains(t, out, "abcdefghijklmnop")
}

func TestRedactMasksBearerHeader(t *testing.T) {
	r := New()
	in := `Authorization: Bearer sk-test-1234567890`
	out := r.Redact(in)
	assert.Contains(t, out, "[MASKED_BEARER_TOKEN]")
	assert.NotContains(t, out, "sk-test-1234567890")
}

func TestRedactLeavesUnmatchedTextAlone(t *testing.T) {
	r := New()
	in := "ordinary log line with no secrets"
	assert.Equal(t, in, r.Redact(in))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", MaskToken("abc"))
	assert.Equal(t, "ab…yz", MaskToken("abcdefghxyz"))
}
