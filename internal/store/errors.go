package store

import "errors"

// ErrNotFound is returned by Repository.DeleteMedia when no row matches the
// caller-supplied key. Other lookups return ent's own not-found error.
var ErrNotFound = errors.New("store: not found")
