package model

// NotificationFlag is one bit of the per-account pending-notification set
// (spec.md §3 "PendingNotificationFlags"). Flags accumulate in the cache
// until drained by push delivery.
type NotificationFlag uint32

const (
	FlagNewMessage NotificationFlag = 1 << iota
	FlagLikesChanged
	FlagMediaContentModerated
	FlagNewsChanged
	FlagProfileStringModerated
	FlagAutomaticProfileSearchCompleted
	FlagAdminNotification
)

// allFlags is used for iteration when building push payloads.
var allFlags = []NotificationFlag{
	FlagNewMessage,
	FlagLikesChanged,
	FlagMediaContentModerated,
	FlagNewsChanged,
	FlagProfileStringModerated,
	FlagAutomaticProfileSearchCompleted,
	FlagAdminNotification,
}

// PendingFlags is the bit-set itself, a plain value type so callers can
// snapshot-and-clear it atomically under the cache entry's lock.
type PendingFlags uint32

// Set returns the flag set with f added.
func (p PendingFlags) Set(f NotificationFlag) PendingFlags { return p | PendingFlags(f) }

// Has reports whether f is set.
func (p PendingFlags) Has(f NotificationFlag) bool { return p&PendingFlags(f) != 0 }

// Empty reports whether no flags are set.
func (p PendingFlags) Empty() bool { return p == 0 }

// SetFlags returns every individual flag present in p, in a stable order.
func (p PendingFlags) SetFlags() []NotificationFlag {
	var out []NotificationFlag
	for _, f := range allFlags {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
