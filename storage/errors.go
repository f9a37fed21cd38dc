package storage

import "errors"

// ErrNotFound is returned when a lookup matches no record. The
// dispatcher treats a user miss as a hard stop for the message.
var ErrNotFound = errors.New("storage: not found")
