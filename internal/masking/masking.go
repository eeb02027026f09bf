// Package masking redacts credential-shaped substrings before they reach
// logs or outbound notifications. Grounded on the teacher's
// pkg/masking.CompiledPattern (named regex + replacement, pre-compiled
// once), collapsed from "many MCP-server-scoped pattern groups resolved at
// call time" down to one fixed built-in set, since this system has no
// per-server masking configuration to resolve against — every process in
// this system shares the same credential shapes (access/refresh tokens,
// push provider keys, LLM API keys).
package masking

import "regexp"

type pattern struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

var builtinPatterns = []pattern{
	{
		name:        "access_token",
		re:          regexp.MustCompile(`(?i)(access[_-]?token["=:\s]+)([A-Za-z0-9_\-\.]{8,})`),
		replacement: "${1}[MASKED_ACCESS_TOKEN]",
	},
	{
		name:        "refresh_token",
		re:          regexp.MustCompile(`(?i)(refresh[_-]?token["=:\s]+)([A-Za-z0-9_\-\.]{8,})`),
		replacement: "${1}[MASKED_REFRESH_TOKEN]",
	},
	{
		name:        "bearer_header",
		re:          regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9_\-\.]{8,})`),
		replacement: "${1}[MASKED_BEARER_TOKEN]",
	},
	{
		name:        "api_key",
		re:          regexp.MustCompile(`(?i)(api[_-]?key["=:\s]+)([A-Za-z0-9_\-\.]{8,})`),
		replacement: "${1}[MASKED_API_KEY]",
	},
}

// Redactor applies the built-in credential patterns to arbitrary text, for
// example an outbound Slack escalation message that might quote a log line.
type Redactor struct {
	patterns []pattern
}

// New returns a Redactor over the built-in pattern set.
func New() *Redactor {
	return &Redactor{patterns: builtinPatterns}
}

// Redact returns s with every recognised credential-shaped substring
// replaced. Text that matches nothing passes through unchanged.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

// MaskToken shortens a bare credential value (one already known to be a
// token, not embedded in surrounding text) to its first and last two
// characters around an ellipsis ("****" for four characters or fewer), for
// structured log fields like slog.String("access_token", masking.MaskToken(tok)).
func MaskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:2] + "…" + token[len(token)-2:]
}
