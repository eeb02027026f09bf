package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/ent"
	"github.com/afrodite-backend/corectl/ent/account"
	"github.com/afrodite-backend/corectl/ent/mediacontent"
	"github.com/afrodite-backend/corectl/ent/moderationitem"
	"github.com/afrodite-backend/corectl/ent/profile"
	"github.com/afrodite-backend/corectl/internal/content"
	"github.com/afrodite-backend/corectl/internal/model"
)

// InsertContent implements content.Store: inserts the finished content row
// and enqueues it for moderation in one transaction. Whether the item is
// "initial" (spec.md §4.G "sub-queue for initial first-time content")
// follows the owning account's lifecycle state: still InitialSetup means
// this is first-time content.
func (r *Repository) InsertContent(ctx context.Context, owner model.AccountIdInternal, slot model.ContentSlot, contentID uuid.UUID, securityFlag, faceDetected bool) error {
	tx, err := r.client.Writer.Tx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin content tx: %w", err)
	}

	ownerRow, err := tx.Account.Get(ctx, int(owner))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: load owning account: %w", err)
	}
	isInitial := ownerRow.State == account.StateInitialSetup

	if err := tx.MediaContent.Create().
		SetAccount(ownerRow).
		SetContentID(contentID.String()).
		SetSlot(int8(slot)).
		SetState(mediacontent.StateInModeration).
		SetSecurityFlag(securityFlag).
		SetFaceDetected(faceDetected).
		SetIsSecurityContent(securityFlag).
		SetInitialContent(isInitial).
		SetCreatedAt(time.Now()).
		Exec(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: insert media content: %w", err)
	}

	if err := tx.ModerationItem.Create().
		SetAccountID(ownerRow.AccountID).
		SetContentType(moderationitem.ContentTypeMediaContent).
		SetReferenceID(contentID.String()).
		SetIsInitial(isInitial).
		SetStatus(moderationitem.StatusPending).
		SetCreatedAt(time.Now()).
		Exec(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: enqueue moderation item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit content insert: %w", err)
	}
	return nil
}

// CollapseInitialVisibilityIfReady implements content.Store: once an
// InitialSetup account has no initial content left in moderation (accepted
// or rejected), the account's pending profile visibility resolves to its
// non-pending form and the account transitions to Normal (spec.md §4.D
// "Initial-setup side effect"). It runs in its own transaction; ApplyVerdict
// calls it after the verdict's transaction has committed.
func (r *Repository) CollapseInitialVisibilityIfReady(ctx context.Context, owner model.AccountIdInternal) error {
	ownerRow, err := r.client.Writer.Account.Get(ctx, int(owner))
	if err != nil {
		return fmt.Errorf("store: load owning account: %w", err)
	}
	if ownerRow.State != account.StateInitialSetup {
		return nil
	}

	pending, err := r.client.Writer.MediaContent.Query().
		Where(
			mediacontent.HasAccountWith(account.ID(int(owner))),
			mediacontent.InitialContent(true),
			mediacontent.StateEQ(mediacontent.StateInModeration),
		).
		Exist(ctx)
	if err != nil {
		return fmt.Errorf("store: check pending initial content: %w", err)
	}
	if pending {
		return nil
	}

	tx, err := r.client.Writer.Tx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin collapse tx: %w", err)
	}

	profileRow, err := tx.Profile.Query().
		Where(profile.HasAccountWith(account.ID(int(owner)))).
		Only(ctx)
	if err != nil && !ent.IsNotFound(err) {
		_ = tx.Rollback()
		return fmt.Errorf("store: load profile for collapse: %w", err)
	}

	if _, updErr := tx.Account.UpdateOneID(int(owner)).
		SetState(account.StateNormal).
		Save(ctx); updErr != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: collapse account state: %w", updErr)
	}

	if profileRow != nil {
		resolved := model.ProfileVisibility(profileRow.Visibility).Resolved()
		if _, updErr := tx.Profile.UpdateOneID(profileRow.ID).
			SetVisibility(profile.Visibility(resolved)).
			Save(ctx); updErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: collapse profile visibility: %w", updErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit collapse: %w", err)
	}
	return nil
}

var _ content.Store = (*Repository)(nil)
