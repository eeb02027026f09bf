package store

import (
	"context"
	"fmt"
	"time"

	"github.com/afrodite-backend/corectl/ent/account"
	"github.com/afrodite-backend/corectl/ent/devicetoken"
	"github.com/afrodite-backend/corectl/internal/model"
)

// DeviceTokenRow is the durable projection of one provider registration;
// internal/pushstate converts it to push.DeviceToken.
type DeviceTokenRow struct {
	Provider      string
	Token         string
	WebPushP256dh string
	WebPushAuth   string
}

// GetDeviceToken loads owner's registration for provider, if any.
func (r *Repository) GetDeviceToken(ctx context.Context, owner model.AccountIdInternal, provider string) (DeviceTokenRow, bool, error) {
	row, err := r.client.Reader.DeviceToken.Query().
		Where(
			devicetoken.HasAccountWith(account.ID(int(owner))),
			devicetoken.ProviderEQ(devicetoken.Provider(provider)),
		).
		Only(ctx)
	if err != nil {
		return DeviceTokenRow{}, false, nil
	}
	return DeviceTokenRow{
		Provider:      string(row.Provider),
		Token:         row.Token,
		WebPushP256dh: stringValue(row.WebPushP256dh),
		WebPushAuth:   stringValue(row.WebPushAuth),
	}, true, nil
}

// UpsertDeviceToken registers (or replaces) owner's token for one provider.
// Unique per (account, provider) per the schema index, so a re-registration
// overwrites in place rather than accumulating stale rows.
func (r *Repository) UpsertDeviceToken(ctx context.Context, owner model.AccountIdInternal, row DeviceTokenRow) error {
	n, err := r.client.Writer.DeviceToken.Update().
		Where(
			devicetoken.HasAccountWith(account.ID(int(owner))),
			devicetoken.ProviderEQ(devicetoken.Provider(row.Provider)),
		).
		SetToken(row.Token).
		SetNillableWebPushP256dh(nonEmpty(row.WebPushP256dh)).
		SetNillableWebPushAuth(nonEmpty(row.WebPushAuth)).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("store: update device token: %w", err)
	}
	if n > 0 {
		return nil
	}

	ownerRow, err := r.client.Writer.Account.Get(ctx, int(owner))
	if err != nil {
		return fmt.Errorf("store: load owning account: %w", err)
	}
	create := r.client.Writer.DeviceToken.Create().
		SetAccount(ownerRow).
		SetProvider(devicetoken.Provider(row.Provider)).
		SetToken(row.Token).
		SetRegisteredAt(time.Now())
	if row.WebPushP256dh != "" {
		create = create.SetWebPushP256dh(row.WebPushP256dh)
	}
	if row.WebPushAuth != "" {
		create = create.SetWebPushAuth(row.WebPushAuth)
	}
	if err := create.Exec(ctx); err != nil {
		return fmt.Errorf("store: create device token: %w", err)
	}
	return nil
}

// DeleteDeviceToken drops owner's registration for provider.
func (r *Repository) DeleteDeviceToken(ctx context.Context, owner model.AccountIdInternal, provider string) error {
	_, err := r.client.Writer.DeviceToken.Delete().
		Where(
			devicetoken.HasAccountWith(account.ID(int(owner))),
			devicetoken.ProviderEQ(devicetoken.Provider(provider)),
		).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: delete device token: %w", err)
	}
	return nil
}

// APNsEncryptionKey returns owner's AES-128 APNs payload key, if one has
// been provisioned (spec.md §4.E "account-specific payload encryption").
func (r *Repository) APNsEncryptionKey(ctx context.Context, owner model.AccountIdInternal) ([]byte, bool, error) {
	row, err := r.client.Reader.Account.Get(ctx, int(owner))
	if err != nil {
		return nil, false, fmt.Errorf("store: load account: %w", err)
	}
	if row.ApnsSymmetricKey == nil {
		return nil, false, nil
	}
	return row.ApnsSymmetricKey, true, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
