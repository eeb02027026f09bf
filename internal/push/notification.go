package push

import "github.com/afrodite-backend/corectl/internal/model"

// Provider names one of the three adapters.
type Provider string

const (
	ProviderAPNs    Provider = "apns"
	ProviderFCM     Provider = "fcm"
	ProviderWebPush Provider = "web_push"
)

// Notification is the provider-agnostic payload built from one pending
// flag (spec.md §4.E step 2). An empty Title with ClearOnly set means "hide
// whatever local notification the client is already showing."
type Notification struct {
	CollapseID string
	Title      string
	Body       string
	Data       map[string]string
	ClearOnly  bool
}

// DeviceToken is the provider-specific registration a cache entry carries.
// Web Push carries two extra subscription fields; APNs/FCM use Token alone.
type DeviceToken struct {
	Provider    Provider
	Token       string
	WebPushP256dh string
	WebPushAuth   string
}

// StateProvider is the read/write surface the send procedure needs against
// the cache and durable store, kept deliberately small so internal/push
// never imports internal/cache or internal/store directly.
type StateProvider interface {
	// DrainPendingFlags atomically reads and clears accountID's pending
	// flags, returning the snapshot (spec.md §4.E step 1).
	DrainPendingFlags(accountID model.AccountIdInternal) model.PendingFlags

	// BuildNotification renders one set flag into a Notification via
	// whatever read path that flag implies (step 2).
	BuildNotification(accountID model.AccountIdInternal, flag model.NotificationFlag) Notification

	// DeviceToken returns the registration for provider, if any.
	DeviceToken(accountID model.AccountIdInternal, provider Provider) (DeviceToken, bool)

	// RemoveDeviceToken drops provider's registration from both cache and
	// durable store (Unregistered/endpoint-gone outcome).
	RemoveDeviceToken(accountID model.AccountIdInternal, provider Provider) error

	// APNsEncryptionKey returns the account-specific AES-128 key used to
	// encrypt APNs payload content.
	APNsEncryptionKey(accountID model.AccountIdInternal) ([]byte, bool)
}
