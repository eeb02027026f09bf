package service

import (
	"context"
	"fmt"

	"github.com/afrodite-backend/corectl/internal/moderation"
)

// ModerationStore is the admin-review surface ModerationService needs from
// store.Repository; it reuses moderation.Store's own ApplyVerdict rather
// than defining a second write path for the same row.
type ModerationStore interface {
	ListEscalated(ctx context.Context, pageSize int) ([]moderation.Item, error)
	ApplyVerdict(ctx context.Context, item moderation.Item, verdict moderation.Verdict) error
}

// ModerationService implements the human-review path for items the
// worker's automatic verdict computation escalated instead of resolving
// (spec.md §4.G "optionally escalate rejections... for human review").
type ModerationService struct {
	store ModerationStore
}

// NewModerationService wires the store.
func NewModerationService(store ModerationStore) *ModerationService {
	return &ModerationService{store: store}
}

// ListEscalated returns up to pageSize escalated items awaiting admin
// decision, oldest first.
func (s *ModerationService) ListEscalated(ctx context.Context, pageSize int) ([]moderation.Item, error) {
	items, err := s.store.ListEscalated(ctx, pageSize)
	if err != nil {
		return nil, fmt.Errorf("service: list escalated items: %w", err)
	}
	return items, nil
}

// Resolve applies an admin's final accept/reject decision to an escalated
// item. Escalating again here would leave the item stuck, so that action
// is rejected up front.
func (s *ModerationService) Resolve(ctx context.Context, item moderation.Item, action moderation.VerdictAction, rejectionReason string) error {
	if action == moderation.VerdictEscalate {
		return NewValidationError("action", "admin review must accept or reject, not escalate")
	}
	verdict := moderation.Verdict{Action: action, RejectionReason: rejectionReason}
	if err := s.store.ApplyVerdict(ctx, item, verdict); err != nil {
		return fmt.Errorf("service: apply admin verdict: %w", err)
	}
	return nil
}
