package eventbus

// Event kind strings carried in the "kind" field of each WebSocket text
// frame. The first seven mirror spec.md §3's PendingNotificationFlags
// one-for-one; producers pass the matching model.Flag* constant alongside
// so SendConnectedEvent can fall back to push delivery.
const (
	KindNewMessage                      = "newMessage"
	KindLikesChanged                    = "likesChanged"
	KindMediaContentModerated           = "mediaContentModerated"
	KindNewsChanged                     = "newsChanged"
	KindProfileStringModerated          = "profileStringModerated"
	KindAutomaticProfileSearchCompleted = "automaticProfileSearchCompleted"
	KindAdminNotification               = "adminNotification"

	// KindContentProcessingStateChanged has no pending-flag counterpart; see
	// Bus.PublishProcessingState.
	KindContentProcessingStateChanged = "contentProcessingStateChanged"
)
