package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/ent"
	"github.com/afrodite-backend/corectl/ent/account"
	"github.com/afrodite-backend/corectl/ent/mediacontent"
	"github.com/afrodite-backend/corectl/ent/news"
	"github.com/afrodite-backend/corectl/ent/profile"
	"github.com/afrodite-backend/corectl/internal/model"
)

// Repository is the general-purpose ent-backed data-access surface used
// directly by internal/service, as distinct from the three narrow adapters
// (session_adapter.go, content_adapter.go, moderation_adapter.go) built to
// satisfy other components' Store interfaces. Grounded on the teacher's
// pkg/services pattern of a thin struct wrapping *ent.Client per concern,
// collapsed to one struct here since this system's services are far fewer.
type Repository struct {
	client   *Client
	notifier Notifier
}

// Notifier is the narrow slice of eventbus.Bus that moderation_adapter.go
// uses to wake a live session once a verdict lands. Kept as an interface
// here so internal/store never imports internal/eventbus directly.
type Notifier interface {
	SendConnectedEvent(accountID model.AccountIdInternal, kind string, payload any, flag model.NotificationFlag)
}

// NewRepository wraps an opened Client.
func NewRepository(c *Client) *Repository {
	return &Repository{client: c}
}

// SetNotifier wires the event bus in after both it and the repository have
// been constructed, breaking the cyclic construction order between them.
func (r *Repository) SetNotifier(n Notifier) {
	r.notifier = n
}

// AccountRow is the durable projection of one account, used both to seed
// the cache at startup and to answer account-detail API requests.
type AccountRow struct {
	InternalID model.AccountIdInternal
	AccountID  model.AccountId
	State      model.AccountState
	HasToken   bool
	Token      model.AccessToken
}

// CreateAccount inserts a brand-new account row in InitialSetup state with
// a freshly issued access token, returning the row as seeded.
func (r *Repository) CreateAccount(ctx context.Context, token model.AccessToken) (AccountRow, error) {
	accountID := model.NewAccountId()
	row, err := r.client.Writer.Account.Create().
		SetAccountID(accountID.String()).
		SetState(account.StateInitialSetup).
		SetAccessToken(string(token)).
		SetCreatedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return AccountRow{}, fmt.Errorf("store: create account: %w", err)
	}
	if err := r.client.History.Append(ctx, accountID.String(), "account_created", nil); err != nil {
		return AccountRow{}, fmt.Errorf("store: append history: %w", err)
	}
	return AccountRow{
		InternalID: model.AccountIdInternal(row.ID),
		AccountID:  accountID,
		State:      model.AccountStateInitialSetup,
		HasToken:   true,
		Token:      token,
	}, nil
}

// ListAccountsForCacheLoad returns every account row needed to seed the
// in-memory cache at startup (spec.md §4.B "populated once at startup from
// the durable store").
func (r *Repository) ListAccountsForCacheLoad(ctx context.Context) ([]AccountRow, error) {
	rows, err := r.client.Reader.Account.Query().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list accounts: %w", err)
	}
	out := make([]AccountRow, 0, len(rows))
	for _, row := range rows {
		accountID, err := model.AccountIdFromString(row.AccountID)
		if err != nil {
			return nil, fmt.Errorf("store: parse account_id %q: %w", row.AccountID, err)
		}
		ar := AccountRow{
			InternalID: model.AccountIdInternal(row.ID),
			AccountID:  accountID,
			State:      model.AccountState(row.State),
		}
		if row.AccessToken != nil {
			ar.HasToken = true
			ar.Token = model.AccessToken(*row.AccessToken)
		}
		out = append(out, ar)
	}
	return out, nil
}

// SetAccountState applies a state transition, validated by the caller via
// model.AccountState.CanTransitionTo before this is called.
func (r *Repository) SetAccountState(ctx context.Context, id model.AccountIdInternal, next model.AccountState) error {
	_, err := r.client.Writer.Account.UpdateOneID(int(id)).
		SetState(account.State(next)).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("store: set account state: %w", err)
	}
	return r.client.History.Append(ctx, fmt.Sprintf("%d", id), "account_state_changed", next)
}

// RequestDeletion marks an account pending-deletion with a grace-period
// timestamp (spec.md §3 "AccountState").
func (r *Repository) RequestDeletion(ctx context.Context, id model.AccountIdInternal, at time.Time) error {
	_, err := r.client.Writer.Account.UpdateOneID(int(id)).
		SetState(account.StatePendingDeletion).
		SetPendingDeletionAt(at).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("store: request deletion: %w", err)
	}
	return nil
}

// CancelDeletion reverts a pending-deletion account back to Normal and
// clears the grace-period timestamp.
func (r *Repository) CancelDeletion(ctx context.Context, id model.AccountIdInternal) error {
	_, err := r.client.Writer.Account.UpdateOneID(int(id)).
		SetState(account.StateNormal).
		ClearPendingDeletionAt().
		Save(ctx)
	if err != nil {
		return fmt.Errorf("store: cancel deletion: %w", err)
	}
	return nil
}

// GetProfile loads the profile row for owner, if one exists.
func (r *Repository) GetProfile(ctx context.Context, owner model.AccountIdInternal) (model.Profile, bool, error) {
	row, err := r.client.Reader.Profile.Query().
		Where(profile.HasAccountWith(account.ID(int(owner)))).
		Only(ctx)
	if ent.IsNotFound(err) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("store: get profile: %w", err)
	}
	return profileFromRow(owner, row), true, nil
}

// UpsertProfile writes p's content fields, bumping Version to a fresh
// UUID, creating the row if it does not exist yet.
func (r *Repository) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	p.Version = uuid.New()
	attrs, err := marshalAttributes(p.Attributes)
	if err != nil {
		return model.Profile{}, fmt.Errorf("store: marshal attributes: %w", err)
	}
	filters, err := marshalFilters(p.Filters)
	if err != nil {
		return model.Profile{}, fmt.Errorf("store: marshal filters: %w", err)
	}

	exists, err := r.client.Writer.Profile.Query().
		Where(profile.HasAccountWith(account.ID(int(p.AccountID)))).
		Exist(ctx)
	if err != nil {
		return model.Profile{}, fmt.Errorf("store: check profile exists: %w", err)
	}

	if exists {
		_, err = r.client.Writer.Profile.Update().
			Where(profile.HasAccountWith(account.ID(int(p.AccountID)))).
			SetName(p.Name).
			SetText(p.Text).
			SetAge(p.Age).
			SetAttributesJSON(attrs).
			SetFiltersJSON(filters).
			SetLatitude(p.Location.Latitude).
			SetLongitude(p.Location.Longitude).
			SetVersion(p.Version.String()).
			Save(ctx)
	} else {
		owner, getErr := r.client.Writer.Account.Get(ctx, int(p.AccountID))
		if getErr != nil {
			return model.Profile{}, fmt.Errorf("store: load owning account: %w", getErr)
		}
		err = r.client.Writer.Profile.Create().
			SetAccount(owner).
			SetName(p.Name).
			SetText(p.Text).
			SetAge(p.Age).
			SetAttributesJSON(attrs).
			SetFiltersJSON(filters).
			SetLatitude(p.Location.Latitude).
			SetLongitude(p.Location.Longitude).
			SetVersion(p.Version.String()).
			SetVisibility(profile.VisibilityPendingPublic).
			Exec(ctx)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("store: upsert profile: %w", err)
	}
	return p, nil
}

// ProfileVisibility returns the account's current visibility value.
func (r *Repository) ProfileVisibility(ctx context.Context, owner model.AccountIdInternal) (model.ProfileVisibility, error) {
	row, err := r.client.Reader.Profile.Query().
		Where(profile.HasAccountWith(account.ID(int(owner)))).
		Only(ctx)
	if err != nil {
		return "", fmt.Errorf("store: profile visibility: %w", err)
	}
	return model.ProfileVisibility(row.Visibility), nil
}

// BumpSyncVersion advances the stored version for (owner, category) by one
// step, saturating rather than overflowing (model.SyncVersion.Next), and
// returns the new value. Used by services after any write that data
// category's clients must be told about.
func (r *Repository) BumpSyncVersion(ctx context.Context, owner model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error) {
	current, err := r.syncVersion(ctx, owner, category)
	if err != nil {
		return 0, err
	}
	next := current.Next()
	if err := r.setSyncVersion(ctx, owner, category, next); err != nil {
		return 0, err
	}
	return next, nil
}

// ListMedia returns every media-content row owned by owner.
func (r *Repository) ListMedia(ctx context.Context, owner model.AccountIdInternal) ([]model.MediaContent, error) {
	rows, err := r.client.Reader.MediaContent.Query().
		Where(mediacontent.HasAccountWith(account.ID(int(owner)))).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list media: %w", err)
	}
	out := make([]model.MediaContent, 0, len(rows))
	for _, row := range rows {
		out = append(out, mediaFromRow(owner, row))
	}
	return out, nil
}

// GetMedia loads one media-content row by its external content id.
func (r *Repository) GetMedia(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID) (model.MediaContent, error) {
	row, err := r.client.Reader.MediaContent.Query().
		Where(
			mediacontent.HasAccountWith(account.ID(int(owner))),
			mediacontent.ContentID(contentID.String()),
		).
		Only(ctx)
	if err != nil {
		return model.MediaContent{}, fmt.Errorf("store: get media: %w", err)
	}
	return mediaFromRow(owner, row), nil
}

// DeleteMedia removes a media-content row. Callers must have already
// confirmed model.MediaContent.Deletable().
func (r *Repository) DeleteMedia(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID) error {
	n, err := r.client.Writer.MediaContent.Delete().
		Where(
			mediacontent.HasAccountWith(account.ID(int(owner))),
			mediacontent.ContentID(contentID.String()),
		).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: delete media: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMediaReference marks or clears contentID's profile/security reference
// flags (spec.md §8 invariant 5: referenced content cannot be deleted).
func (r *Repository) SetMediaReference(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID, profileRef, securityRef *bool) error {
	upd := r.client.Writer.MediaContent.Update().
		Where(
			mediacontent.HasAccountWith(account.ID(int(owner))),
			mediacontent.ContentID(contentID.String()),
		)
	if profileRef != nil {
		upd = upd.SetIsProfileContent(*profileRef)
	}
	if securityRef != nil {
		upd = upd.SetIsSecurityContent(*securityRef)
	}
	if _, err := upd.Save(ctx); err != nil {
		return fmt.Errorf("store: set media reference: %w", err)
	}
	return nil
}

// CreateNews inserts and immediately publishes an admin announcement,
// supplemented from original_source per SPEC_FULL.md §3.
func (r *Repository) CreateNews(ctx context.Context, title, body string) (int, error) {
	row, err := r.client.Writer.News.Create().
		SetTitle(title).
		SetBody(body).
		SetPublished(true).
		SetCreatedAt(time.Now()).
		Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: create news: %w", err)
	}
	return row.ID, nil
}

// ListPublishedNews returns published announcements, newest first.
func (r *Repository) ListPublishedNews(ctx context.Context, limit int) ([]NewsRow, error) {
	rows, err := r.client.Reader.News.Query().
		Where(news.Published(true)).
		Order(ent.Desc(news.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list news: %w", err)
	}
	out := make([]NewsRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewsRow{ID: row.ID, Title: row.Title, Body: row.Body, CreatedAt: row.CreatedAt})
	}
	return out, nil
}

// NewsRow is the read-model handed back to API callers.
type NewsRow struct {
	ID        int
	Title     string
	Body      string
	CreatedAt time.Time
}
