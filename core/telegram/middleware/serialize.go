package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// UserLocker is the minimal interface required for per-user serialization.
type UserLocker interface {
	Lock(userID int64)
	Unlock(userID int64)
}

// SerializeMiddleware holds a per-user lock for the duration of the handler.
// Updates from the same user are processed one at a time so session state
// reads and writes never interleave; updates from different users proceed
// in parallel.
func SerializeMiddleware(locks UserLocker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if locks == nil || user == nil {
				return next(c)
			}
			locks.Lock(user.ID)
			defer locks.Unlock(user.ID)
			return next(c)
		}
	}
}
