package session

import (
	"context"
	"fmt"

	"github.com/afrodite-backend/corectl/internal/model"
)

// RotationDecision tells the handshake whether the current token pair still
// has lifetime left, per spec.md §4.F step 2.
type RotationDecision int

const (
	TokensStillValid RotationDecision = 0
	RotationRequired RotationDecision = 1
)

// RotatedTokens is the pair issued during a rotation pass.
type RotatedTokens struct {
	RefreshToken model.RefreshToken
	AccessToken  model.AccessToken
}

// Store is the durable-store surface the handshake needs. RotateTokens
// commits the new refresh/access token pair in one transaction, verifying
// currentRefreshToken still matches what's on file (spec.md §4.F step 3 —
// "committed to the durable store in one transaction before the access
// token is installed in the cache").
type Store interface {
	RotationDecision(ctx context.Context, accountID model.AccountIdInternal) (RotationDecision, error)
	RotateTokens(ctx context.Context, accountID model.AccountIdInternal, currentRefreshToken model.RefreshToken) (RotatedTokens, error)
	SyncVersion(ctx context.Context, accountID model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error)
	ResetSyncVersion(ctx context.Context, accountID model.AccountIdInternal, category model.DataCategory) error
}

// SyncDecision is what the server decided for one category; Negotiate
// derives the change event name to stream from Category for
// SyncSendDelta/SyncResetAndSend outcomes.
type SyncDecision struct {
	Category model.DataCategory
	Outcome  model.SyncOutcome
}

// NegotiateSync walks the client's reported category versions, comparing
// each against the store's current version and resetting on
// saturation/mismatch, per the table in spec.md §4.F "Per-category sync".
// Categories the client omits are treated as version zero (the client has
// never seen that category, so "server ahead" is the correct outcome
// whenever the server's version is non-zero).
func NegotiateSync(ctx context.Context, store Store, accountID model.AccountIdInternal, client []CategoryVersion) ([]SyncDecision, error) {
	reported := make(map[model.DataCategory]model.SyncVersion, len(client))
	for _, cv := range client {
		reported[cv.Category] = cv.Version
	}

	decisions := make([]SyncDecision, 0, len(model.AllDataCategories))
	for _, category := range model.AllDataCategories {
		serverVersion, err := store.SyncVersion(ctx, accountID, category)
		if err != nil {
			return nil, fmt.Errorf("session: sync version for %s: %w", category, err)
		}

		outcome := model.Reconcile(reported[category], serverVersion)
		if outcome == model.SyncResetAndSend {
			if err := store.ResetSyncVersion(ctx, accountID, category); err != nil {
				return nil, fmt.Errorf("session: reset sync version for %s: %w", category, err)
			}
		}
		if outcome != model.SyncNothing {
			decisions = append(decisions, SyncDecision{Category: category, Outcome: outcome})
		}
	}
	return decisions, nil
}
