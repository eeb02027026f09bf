// Package pushstate implements push.StateProvider over the in-memory cache
// and durable store: pending-flag draining is cache-only (spec.md §4.E step
// 1 never touches SQLite), while device-token and APNs-key reads fall
// through to the store, mirroring internal/store's other thin Store
// adapters (session_adapter.go, content_adapter.go).
package pushstate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/push"
	"github.com/afrodite-backend/corectl/internal/store"
)

// Store is the narrow store.Repository surface this adapter needs.
type Store interface {
	GetDeviceToken(ctx context.Context, owner model.AccountIdInternal, provider string) (store.DeviceTokenRow, bool, error)
	UpsertDeviceToken(ctx context.Context, owner model.AccountIdInternal, row store.DeviceTokenRow) error
	DeleteDeviceToken(ctx context.Context, owner model.AccountIdInternal, provider string) error
	APNsEncryptionKey(ctx context.Context, owner model.AccountIdInternal) ([]byte, bool, error)
	ListPublishedNews(ctx context.Context, limit int) ([]store.NewsRow, error)
}

// Adapter implements push.StateProvider.
type Adapter struct {
	cache  *cache.Cache
	store  Store
	ctx    context.Context
	logger *slog.Logger
}

// New wires an Adapter. The background context is used for the store calls
// push.Manager's provider workers make outside of any request scope.
func New(c *cache.Cache, s Store, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cache: c, store: s, ctx: context.Background(), logger: logger}
}

// DrainPendingFlags implements push.StateProvider: an atomic read-and-clear
// of the cache entry's pending-push bit-set under its own write lock.
func (a *Adapter) DrainPendingFlags(accountID model.AccountIdInternal) model.PendingFlags {
	entry, ok := a.cache.LookupInternal(accountID)
	if !ok {
		return 0
	}
	var drained model.PendingFlags
	entry.Write(func(e *cache.Entry) {
		shared := e.Shared()
		drained = shared.PendingPush
		shared.PendingPush = 0
		e.SetShared(shared)
	})
	return drained
}

// BuildNotification implements push.StateProvider: renders one set flag
// into a provider-agnostic Notification (spec.md §4.E step 2). Flags with
// no further context to load (likes, messages, moderation, search) get a
// static collapsing notification; FlagNewsChanged fetches the latest
// announcement so the body is not empty.
func (a *Adapter) BuildNotification(accountID model.AccountIdInternal, flag model.NotificationFlag) push.Notification {
	switch flag {
	case model.FlagNewMessage:
		return push.Notification{CollapseID: "new-message", Title: "New message", Body: "You have a new message waiting."}
	case model.FlagLikesChanged:
		return push.Notification{CollapseID: "likes-changed", Title: "Someone likes you", Body: "Open the app to see who."}
	case model.FlagMediaContentModerated:
		return push.Notification{CollapseID: "media-moderated", Title: "Photo reviewed", Body: "One of your photos finished review."}
	case model.FlagProfileStringModerated:
		return push.Notification{CollapseID: "profile-string-moderated", Title: "Profile text reviewed", Body: "Part of your profile finished review."}
	case model.FlagAutomaticProfileSearchCompleted:
		return push.Notification{CollapseID: "search-completed", Title: "New matches nearby", Body: "We found new profiles for you."}
	case model.FlagAdminNotification:
		return push.Notification{CollapseID: "admin-notification", Title: "Announcement", Body: "The app team posted an announcement."}
	case model.FlagNewsChanged:
		return a.buildNewsNotification(accountID)
	default:
		return push.Notification{CollapseID: "update", Title: "Update available", Body: "Open the app to see what's new."}
	}
}

func (a *Adapter) buildNewsNotification(accountID model.AccountIdInternal) push.Notification {
	rows, err := a.store.ListPublishedNews(a.ctx, 1)
	if err != nil || len(rows) == 0 {
		a.logger.Warn("pushstate: news lookup failed, using generic body", "account", accountID, "error", err)
		return push.Notification{CollapseID: "news-changed", Title: "News", Body: "There's something new to read."}
	}
	return push.Notification{CollapseID: "news-changed", Title: "News", Body: rows[0].Title}
}

// DeviceToken implements push.StateProvider.
func (a *Adapter) DeviceToken(accountID model.AccountIdInternal, provider push.Provider) (push.DeviceToken, bool) {
	row, ok, err := a.store.GetDeviceToken(a.ctx, accountID, string(provider))
	if err != nil {
		a.logger.Error("pushstate: device token lookup failed", "account", accountID, "provider", provider, "error", err)
		return push.DeviceToken{}, false
	}
	if !ok {
		return push.DeviceToken{}, false
	}
	return push.DeviceToken{
		Provider:      provider,
		Token:         row.Token,
		WebPushP256dh: row.WebPushP256dh,
		WebPushAuth:   row.WebPushAuth,
	}, true
}

// RemoveDeviceToken implements push.StateProvider, clearing both the
// durable row and the cache's cheap has-token flags used elsewhere to skip
// a store round trip.
func (a *Adapter) RemoveDeviceToken(accountID model.AccountIdInternal, provider push.Provider) error {
	if err := a.store.DeleteDeviceToken(a.ctx, accountID, string(provider)); err != nil {
		return fmt.Errorf("pushstate: remove device token: %w", err)
	}
	if entry, ok := a.cache.LookupInternal(accountID); ok {
		entry.Write(func(e *cache.Entry) {
			chat := e.Chat()
			if chat == nil {
				return
			}
			switch provider {
			case push.ProviderAPNs:
				chat.HasAPNsToken = false
			case push.ProviderFCM:
				chat.HasFCMToken = false
			case push.ProviderWebPush:
				chat.HasWebPushToken = false
			}
			e.SetChat(chat)
		})
	}
	return nil
}

// APNsEncryptionKey implements push.StateProvider.
func (a *Adapter) APNsEncryptionKey(accountID model.AccountIdInternal) ([]byte, bool) {
	key, ok, err := a.store.APNsEncryptionKey(a.ctx, accountID)
	if err != nil {
		a.logger.Error("pushstate: apns key lookup failed", "account", accountID, "error", err)
		return nil, false
	}
	return key, ok
}

var _ push.StateProvider = (*Adapter)(nil)
