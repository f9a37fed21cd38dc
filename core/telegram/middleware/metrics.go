package middleware

import (
	"context"

	tghelpers "evernotebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "msg_counters"

type countersCtxKey struct{}

// Counters accumulates messages initiated while handling one update.
// Increments happen on the handler goroutine: asynchronous sends are
// counted when they are accepted, not when they reach Telegram.
type Counters struct {
	Messages int
	Keyboard bool
}

// Add records one outgoing message and whether it carried a keyboard.
func (c *Counters) Add(hasKB bool) {
	if c == nil {
		return
	}
	c.Messages++
	if hasKB {
		c.Keyboard = true
	}
}

// WithCounters attaches the per-update counters to a context so send
// paths outside tele.Context can report into the handler summary.
func WithCounters(ctx context.Context, c *Counters) context.Context {
	if ctx == nil || c == nil {
		return ctx
	}
	return context.WithValue(ctx, countersCtxKey{}, c)
}

// CountersFrom returns the per-update counters, or nil outside a handler.
func CountersFrom(ctx context.Context) *Counters {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(countersCtxKey{}).(*Counters)
	return c
}

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct {
	tele.Context
	counters *Counters
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.counters.Add(hasKeyboard(opts))
	}
	return err
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.counters.Add(hasKeyboard(opts))
	}
	return err
}

// Edit proxies tele.Context.Edit while updating message counters.
func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.counters.Add(hasKeyboard(opts))
	}
	return err
}

// EditOrSend proxies tele.Context.EditOrSend while updating message counters.
func (m metricsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.counters.Add(hasKeyboard(opts))
	}
	return err
}

// MessageMetricsMiddleware instruments the update with message counters.
// The counters are reachable both through tele.Context and through the
// stored logging context, so sends issued by services count too.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctr := &Counters{}
		c.Set(countersKey, ctr)
		if ctx, ok := tghelpers.ContextFrom(c); ok {
			tghelpers.StoreContext(c, WithCounters(ctx, ctr))
		}
		return next(metricsContext{Context: c, counters: ctr})
	}
}

// GetCounters reads message count and keyboard presence for the update.
func GetCounters(c tele.Context) (int, bool) {
	if ctr, ok := c.Get(countersKey).(*Counters); ok && ctr != nil {
		return ctr.Messages, ctr.Keyboard
	}
	return 0, false
}
