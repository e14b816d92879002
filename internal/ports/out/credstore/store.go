package credstore

import "context"

// Store persists the single opaque bearer credential for the session.
//
// The credential is written only by the login mutation and read before every
// outbound call; implementations must guarantee read-after-write consistency.
// Get returns "" with a nil error when no credential is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
