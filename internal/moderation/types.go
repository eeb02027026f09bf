// Package moderation implements the pending-queue worker loop, trivial
// and LLM-assisted verdict computation, and verdict application described
// in spec.md §4.G. Grounded structurally on the teacher's bounded worker-
// pool shape (pkg/queue) and its gRPC LLM client's request/response
// envelope (pkg/agent/llm_client.go), reworked into a plain OpenAI-
// compatible HTTP client since spec.md never calls for gRPC anywhere in
// this system.
package moderation

import (
	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/internal/model"
)

// ContentType distinguishes the three moderatable content kinds. Profile
// name and text are modeled as distinct content types sharing one queue,
// per spec.md §4.G ("profile-string moderation (name and text as distinct
// content types)").
type ContentType int

const (
	ContentTypeProfileName ContentType = iota
	ContentTypeProfileText
	ContentTypeMediaContent
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeProfileName:
		return "profile_name"
	case ContentTypeProfileText:
		return "profile_text"
	case ContentTypeMediaContent:
		return "media_content"
	default:
		return "unknown"
	}
}

// QueueKind selects which of the two queue types a worker drains.
type QueueKind int

const (
	QueueMediaContentInitial QueueKind = iota
	QueueMediaContent
	QueueProfileString
)

// Item is one pending moderation row.
type Item struct {
	ID          uuid.UUID
	AccountID   model.AccountIdInternal
	ContentType ContentType
	ReferenceID uuid.UUID // content id for media, profile row id for strings
	TextValue   string    // populated for profile-string items
	IsInitial   bool      // populated for media-content items
}

// VerdictAction is the outcome of moderating one item.
type VerdictAction int

const (
	VerdictAccept VerdictAction = iota
	VerdictReject
	VerdictEscalate
)

// Verdict is what a handler computes for one Item (spec.md §4.G "Verdict
// computation").
type Verdict struct {
	Action          VerdictAction
	RejectionReason string
}
