package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/afrodite-backend/corectl/internal/moderation/llm"
)

// LLMClient is the narrow surface Verdict computation needs from an LLM
// client, letting this package stay decoupled from internal/moderation/llm.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config controls LLM-assisted verdict computation (spec.md §4.G "Verdict
// computation").
type Config struct {
	LLM LLMClient

	// PromptTemplate receives the item's text (profile strings) or a
	// content description (media) via fmt.Sprintf's single %s verb.
	PromptTemplate string

	// ExpectedAcceptToken is compared case-insensitively against the
	// first non-empty line of the LLM's response.
	ExpectedAcceptToken string

	// AppendLLMOutputToRejection appends the LLM's raw output to the
	// user-visible rejection reason when set.
	AppendLLMOutputToRejection bool

	// EscalateRejections sends LLM rejections to human moderators instead
	// of auto-rejecting.
	EscalateRejections bool

	// DefaultAction applies when no LLM is configured or the LLM call
	// ultimately fails after its retry schedule (spec.md §4.G "Default").
	DefaultAction VerdictAction
}

// promptSubject renders the piece of content a prompt is about.
func promptSubject(item Item) string {
	if item.ContentType == ContentTypeMediaContent {
		return fmt.Sprintf("media content %s", item.ReferenceID)
	}
	return item.TextValue
}

// ComputeVerdict implements spec.md §4.G's verdict computation: trivial
// acceptance for single-grapheme profile strings, then the LLM path if
// configured, falling back to cfg.DefaultAction.
func ComputeVerdict(ctx context.Context, item Item, cfg Config) Verdict {
	if item.ContentType != ContentTypeMediaContent && IsSingleVisibleGrapheme(item.TextValue) {
		return Verdict{Action: VerdictAccept}
	}

	if cfg.LLM == nil {
		return Verdict{Action: cfg.DefaultAction}
	}

	prompt := fmt.Sprintf(cfg.PromptTemplate, promptSubject(item))
	output, err := cfg.LLM.Complete(ctx, prompt)
	if err != nil {
		return Verdict{Action: cfg.DefaultAction}
	}

	firstLine := llm.FirstNonEmptyLine(output)
	if strings.HasPrefix(strings.ToLower(firstLine), strings.ToLower(cfg.ExpectedAcceptToken)) {
		return Verdict{Action: VerdictAccept}
	}

	reason := "rejected by moderation"
	if cfg.AppendLLMOutputToRejection {
		reason = fmt.Sprintf("%s: %s", reason, output)
	}

	if cfg.EscalateRejections {
		return Verdict{Action: VerdictEscalate, RejectionReason: reason}
	}
	return Verdict{Action: VerdictReject, RejectionReason: reason}
}
