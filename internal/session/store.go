package session

import (
	"context"
	"errors"
)

// Storage keys shared with the browser client.
const (
	KeyToken = "app_token"
	KeyUser  = "user"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is a string key/value store partitioned by session id.
type Store interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid, key, value string) error
	// Remove deletes the given keys. Removing absent keys is not an error.
	Remove(ctx context.Context, sid string, keys ...string) error
}
