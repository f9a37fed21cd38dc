// Package cache provides the byte-oriented key-value store backing
// derived lookups such as a user's notebook list. Entries never expire
// on their own; callers overwrite them explicitly.
package cache

import "context"

// Store is a minimal get/set interface over opaque values. Get reports
// a miss via found=false; a miss is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
