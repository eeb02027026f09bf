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
	"github.com/afrodite-backend/corectl/ent/predicate"
	"github.com/afrodite-backend/corectl/internal/eventbus"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/moderation"
)

// EnqueueProfileStringModeration queues owner's name or text for review,
// superseding any still-pending item of the same content type: only the
// latest edit needs review (spec.md §4.G, "profile-string queue"). isInitial
// follows the owning account's lifecycle state the same way content
// enqueuing does (see InsertContent).
func (r *Repository) EnqueueProfileStringModeration(ctx context.Context, owner model.AccountIdInternal, contentType moderation.ContentType, text string) error {
	tx, err := r.client.Writer.Tx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin moderation enqueue tx: %w", err)
	}

	ownerRow, err := tx.Account.Get(ctx, int(owner))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: load owning account: %w", err)
	}
	entType := moderationContentTypeEnt(contentType)

	if _, err := tx.ModerationItem.Update().
		Where(
			moderationitem.AccountID(ownerRow.AccountID),
			moderationitem.ContentTypeEQ(entType),
			moderationitem.StatusEQ(moderationitem.StatusPending),
		).
		SetStatus(moderationitem.StatusRejected).
		SetRejectionReason("superseded by a newer edit").
		Save(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: supersede pending moderation item: %w", err)
	}

	if err := tx.ModerationItem.Create().
		SetAccountID(ownerRow.AccountID).
		SetContentType(entType).
		SetReferenceID("").
		SetNillableTextValue(&text).
		SetIsInitial(ownerRow.State == account.StateInitialSetup).
		SetStatus(moderationitem.StatusPending).
		SetCreatedAt(time.Now()).
		Exec(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: enqueue profile string moderation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit moderation enqueue: %w", err)
	}
	return nil
}

// moderationQueueFilter maps a moderation.QueueKind onto the content-type
// (and, for media content, is-initial) predicate that selects its rows.
func moderationQueueFilter(queue moderation.QueueKind) ([]moderationitem.ContentType, *bool) {
	switch queue {
	case moderation.QueueMediaContentInitial:
		initial := true
		return []moderationitem.ContentType{moderationitem.ContentTypeMediaContent}, &initial
	case moderation.QueueMediaContent:
		initial := false
		return []moderationitem.ContentType{moderationitem.ContentTypeMediaContent}, &initial
	case moderation.QueueProfileString:
		return []moderationitem.ContentType{moderationitem.ContentTypeProfileName, moderationitem.ContentTypeProfileText}, nil
	default:
		return nil, nil
	}
}

// FetchPage implements moderation.Store: a bounded page of pending items
// for one queue, oldest first (spec.md §4.G, each queue paged independently).
// ModerationItem carries only the external AccountId string (it has no
// account edge — see ent/schema/moderation_item.go), so resolving the
// internal id each caller needs is a second, batched lookup.
func (r *Repository) FetchPage(ctx context.Context, queue moderation.QueueKind, pageSize int) ([]moderation.Item, error) {
	contentTypes, initial := moderationQueueFilter(queue)

	q := r.client.Reader.ModerationItem.Query().
		Where(
			moderationitem.ContentTypeIn(contentTypes...),
			moderationitem.StatusEQ(moderationitem.StatusPending),
		).
		Order(ent.Asc(moderationitem.FieldCreatedAt)).
		Limit(pageSize)
	if initial != nil {
		q = q.Where(moderationitem.IsInitial(*initial))
	}
	rows, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: fetch moderation page: %w", err)
	}
	return r.moderationItemsFromRows(ctx, rows)
}

// ListEscalated returns every escalated item awaiting admin review, oldest
// first, regardless of content type — spec.md §4.G "optionally escalate
// rejections" feeds this queue rather than resolving automatically.
func (r *Repository) ListEscalated(ctx context.Context, pageSize int) ([]moderation.Item, error) {
	rows, err := r.client.Reader.ModerationItem.Query().
		Where(moderationitem.StatusEQ(moderationitem.StatusEscalated)).
		Order(ent.Asc(moderationitem.FieldCreatedAt)).
		Limit(pageSize).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: fetch escalated items: %w", err)
	}
	return r.moderationItemsFromRows(ctx, rows)
}

// moderationItemsFromRows batch-resolves owners and converts ent rows into
// moderation.Item, shared by FetchPage and ListEscalated.
func (r *Repository) moderationItemsFromRows(ctx context.Context, rows []*ent.ModerationItem) ([]moderation.Item, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	externalIDs := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.AccountID]; ok {
			continue
		}
		seen[row.AccountID] = struct{}{}
		externalIDs = append(externalIDs, row.AccountID)
	}
	accountRows, err := r.client.Reader.Account.Query().
		Where(account.AccountIDIn(externalIDs...)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: resolve moderation item owners: %w", err)
	}
	internalByExternal := make(map[string]model.AccountIdInternal, len(accountRows))
	for _, a := range accountRows {
		internalByExternal[a.AccountID] = model.AccountIdInternal(a.ID)
	}

	out := make([]moderation.Item, 0, len(rows))
	for _, row := range rows {
		var refID uuid.UUID
		if row.ReferenceID != "" {
			refID, err = uuid.Parse(row.ReferenceID)
			if err != nil {
				return nil, fmt.Errorf("store: parse moderation reference id: %w", err)
			}
		}
		out = append(out, moderation.Item{
			ID:          uuid.NewMD5(uuid.Nil, []byte(fmt.Sprintf("moderation-item:%d", row.ID))),
			AccountID:   internalByExternal[row.AccountID],
			ContentType: moderationContentType(row.ContentType),
			ReferenceID: refID,
			TextValue:   stringValue(row.TextValue),
			IsInitial:   row.IsInitial,
		})
	}
	return out, nil
}

func moderationContentType(t moderationitem.ContentType) moderation.ContentType {
	switch t {
	case moderationitem.ContentTypeProfileName:
		return moderation.ContentTypeProfileName
	case moderationitem.ContentTypeProfileText:
		return moderation.ContentTypeProfileText
	default:
		return moderation.ContentTypeMediaContent
	}
}

func moderationContentTypeEnt(t moderation.ContentType) moderationitem.ContentType {
	switch t {
	case moderation.ContentTypeProfileName:
		return moderationitem.ContentTypeProfileName
	case moderation.ContentTypeProfileText:
		return moderationitem.ContentTypeProfileText
	default:
		return moderationitem.ContentTypeMediaContent
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ApplyVerdict implements moderation.Store: commits the verdict to the
// owning row (media content state, for media items) and marks the queue
// item resolved, in one transaction. A reference id that no longer matches
// a pending item is treated as a no-op success rather than an error — the
// user already superseded it (e.g. deleted the content) before the verdict
// landed, which spec.md §4.G tolerates.
func (r *Repository) ApplyVerdict(ctx context.Context, item moderation.Item, verdict moderation.Verdict) error {
	tx, err := r.client.Writer.Tx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin verdict tx: %w", err)
	}

	ownerRow, err := tx.Account.Get(ctx, int(item.AccountID))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: load verdict owner: %w", err)
	}

	lookup := []predicate.ModerationItem{
		moderationitem.AccountID(ownerRow.AccountID),
		moderationitem.ContentTypeEQ(moderationContentTypeEnt(item.ContentType)),
		moderationitem.StatusEQ(moderationitem.StatusPending),
	}
	if item.ContentType == moderation.ContentTypeMediaContent {
		lookup = append(lookup, moderationitem.ReferenceID(item.ReferenceID.String()))
	}

	modRow, err := tx.ModerationItem.Query().Where(lookup...).Only(ctx)
	if err != nil {
		_ = tx.Rollback()
		if ent.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("store: load pending moderation item: %w", err)
	}

	status := moderationitem.StatusAccepted
	switch verdict.Action {
	case moderation.VerdictReject:
		status = moderationitem.StatusRejected
	case moderation.VerdictEscalate:
		status = moderationitem.StatusEscalated
	}

	upd := tx.ModerationItem.UpdateOneID(modRow.ID).SetStatus(status)
	if verdict.RejectionReason != "" {
		upd = upd.SetRejectionReason(verdict.RejectionReason)
	}
	if err := upd.Exec(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: update moderation item: %w", err)
	}

	if item.ContentType == moderation.ContentTypeMediaContent && verdict.Action != moderation.VerdictEscalate {
		mcState := mediacontent.StateModeratedAccepted
		if verdict.Action == moderation.VerdictReject {
			mcState = mediacontent.StateModeratedRejected
		}
		if _, err := tx.MediaContent.Update().
			Where(mediacontent.ContentID(item.ReferenceID.String())).
			SetState(mcState).
			Save(ctx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: update media content state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit verdict: %w", err)
	}

	if item.ContentType == moderation.ContentTypeMediaContent && verdict.Action == moderation.VerdictAccept {
		if err := r.CollapseInitialVisibilityIfReady(ctx, item.AccountID); err != nil {
			return err
		}
	}

	if r.notifier != nil && verdict.Action != moderation.VerdictEscalate {
		kind, flag := moderationNotification(item.ContentType)
		r.notifier.SendConnectedEvent(item.AccountID, kind, verdictPayload{
			ContentType: item.ContentType.String(),
			ReferenceID: item.ReferenceID.String(),
			Accepted:    verdict.Action == moderation.VerdictAccept,
		}, flag)
	}
	return nil
}

type verdictPayload struct {
	ContentType string `json:"contentType"`
	ReferenceID string `json:"referenceId"`
	Accepted    bool   `json:"accepted"`
}

func moderationNotification(t moderation.ContentType) (string, model.NotificationFlag) {
	if t == moderation.ContentTypeMediaContent {
		return eventbus.KindMediaContentModerated, model.FlagMediaContentModerated
	}
	return eventbus.KindProfileStringModerated, model.FlagProfileStringModerated
}

var _ moderation.Store = (*Repository)(nil)
