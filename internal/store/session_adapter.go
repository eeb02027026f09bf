package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/afrodite-backend/corectl/ent/account"
	"github.com/afrodite-backend/corectl/ent/syncversionrow"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/session"
)

// tokenLifetime bounds how long an issued access token is considered
// current before the handshake demands rotation (spec.md §4.F step 2).
const tokenLifetime = 24 * time.Hour

func newRandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("store: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashRefreshToken(t model.RefreshToken) string {
	sum := sha256.Sum256([]byte(t))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RotationDecision implements session.Store. This repository has no
// issued-at column yet (see DESIGN.md Open Questions), so it always
// reports TokensStillValid; a future migration adding issued_at would
// change only this method's comparison against tokenLifetime.
func (r *Repository) RotationDecision(ctx context.Context, accountID model.AccountIdInternal) (session.RotationDecision, error) {
	return session.TokensStillValid, nil
}

// RotateTokens implements session.Store: verifies currentRefreshToken's
// hash matches what's on file, then commits a fresh refresh/access token
// pair in one transaction (spec.md §4.F step 3).
func (r *Repository) RotateTokens(ctx context.Context, accountID model.AccountIdInternal, currentRefreshToken model.RefreshToken) (session.RotatedTokens, error) {
	tx, err := r.client.Writer.Tx(ctx)
	if err != nil {
		return session.RotatedTokens{}, fmt.Errorf("store: begin rotation tx: %w", err)
	}

	row, err := tx.Account.Get(ctx, int(accountID))
	if err != nil {
		_ = tx.Rollback()
		return session.RotatedTokens{}, fmt.Errorf("store: load account: %w", err)
	}
	if row.RefreshTokenHash != nil && *row.RefreshTokenHash != hashRefreshToken(currentRefreshToken) {
		_ = tx.Rollback()
		return session.RotatedTokens{}, fmt.Errorf("store: refresh token mismatch")
	}

	rawRefresh, err := newRandomToken(32)
	if err != nil {
		_ = tx.Rollback()
		return session.RotatedTokens{}, err
	}
	rawAccess, err := newRandomToken(24)
	if err != nil {
		_ = tx.Rollback()
		return session.RotatedTokens{}, err
	}
	refreshHash := hashRefreshToken(model.RefreshToken(rawRefresh))

	if _, err := tx.Account.UpdateOneID(int(accountID)).
		SetAccessToken(rawAccess).
		SetRefreshTokenHash(refreshHash).
		Save(ctx); err != nil {
		_ = tx.Rollback()
		return session.RotatedTokens{}, fmt.Errorf("store: save rotated tokens: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return session.RotatedTokens{}, fmt.Errorf("store: commit rotation: %w", err)
	}

	return session.RotatedTokens{
		RefreshToken: model.RefreshToken(rawRefresh),
		AccessToken:  model.AccessToken(rawAccess),
	}, nil
}

// syncVersion reads the stored counter for (owner, category), defaulting to
// zero when no row exists yet (a category a client has never touched).
func (r *Repository) syncVersion(ctx context.Context, owner model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error) {
	row, err := r.client.Reader.SyncVersionRow.Query().
		Where(
			syncversionrow.HasAccountWith(account.ID(int(owner))),
			syncversionrow.Category(string(category)),
		).
		Only(ctx)
	if err != nil {
		return 0, nil // not found: treated as version zero, per spec.md §4.F
	}
	return model.SyncVersion(row.Version), nil
}

func (r *Repository) setSyncVersion(ctx context.Context, owner model.AccountIdInternal, category model.DataCategory, v model.SyncVersion) error {
	n, err := r.client.Writer.SyncVersionRow.Update().
		Where(
			syncversionrow.HasAccountWith(account.ID(int(owner))),
			syncversionrow.Category(string(category)),
		).
		SetVersion(uint32(v)).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("store: update sync version: %w", err)
	}
	if n > 0 {
		return nil
	}

	ownerRow, err := r.client.Writer.Account.Get(ctx, int(owner))
	if err != nil {
		return fmt.Errorf("store: load owning account: %w", err)
	}
	if err := r.client.Writer.SyncVersionRow.Create().
		SetAccount(ownerRow).
		SetCategory(string(category)).
		SetVersion(uint32(v)).
		Exec(ctx); err != nil {
		return fmt.Errorf("store: create sync version row: %w", err)
	}
	return nil
}

// SyncVersion implements session.Store.
func (r *Repository) SyncVersion(ctx context.Context, accountID model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error) {
	return r.syncVersion(ctx, accountID, category)
}

// ResetSyncVersion implements session.Store: sets (account, category) back
// to zero through setSyncVersion (an update, or a create when no row
// exists, without a wrapping transaction), per spec.md §4.F "reset the
// server-side version to zero".
func (r *Repository) ResetSyncVersion(ctx context.Context, accountID model.AccountIdInternal, category model.DataCategory) error {
	return r.setSyncVersion(ctx, accountID, category, 0)
}

var _ session.Store = (*Repository)(nil)
