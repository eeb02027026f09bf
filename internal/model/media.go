package model

import "github.com/google/uuid"

// ContentSlot identifies one of the seven per-account upload slots.
type ContentSlot uint8

// SlotCount is the fixed number of upload slots per account (spec.md §4.D).
const SlotCount = 7

// ValidSlot reports whether slot is in the addressable 0..=6 range.
func ValidSlot(slot int) bool { return slot >= 0 && slot < SlotCount }

// ContentState is the per-content moderation state machine:
// InSlot -> InModeration -> {ModeratedAsAccepted, ModeratedAsRejected}.
type ContentState string

const (
	ContentStateInSlot              ContentState = "in_slot"
	ContentStateInModeration         ContentState = "in_moderation"
	ContentStateModeratedAsAccepted ContentState = "moderated_accepted"
	ContentStateModeratedAsRejected ContentState = "moderated_rejected"
)

// ContentType is the MIME-ish classification of uploaded media. Only JPEG
// is accepted by the content pipeline (spec.md §6 "image/jpeg").
type ContentType string

const ContentTypeJPEG ContentType = "image/jpeg"

// MediaContent is one piece of uploaded, possibly-moderated media.
type MediaContent struct {
	ContentID     uuid.UUID
	Slot          ContentSlot
	State         ContentState
	Owner         AccountIdInternal
	SecurityFlag  bool
	FaceDetected  bool
	ContentType   ContentType
	// ReferencedAsProfileContent / ReferencedAsSecurityContent are set when
	// this content is currently selected as one of those roles. Content
	// referenced by either cannot be deleted (spec.md §8 invariant 5).
	ReferencedAsProfileContent  bool
	ReferencedAsSecurityContent bool
}

// Deletable reports whether this content may be removed right now.
func (m MediaContent) Deletable() bool {
	if m.State != ContentStateModeratedAsAccepted {
		return true
	}
	return !m.ReferencedAsProfileContent && !m.ReferencedAsSecurityContent
}
