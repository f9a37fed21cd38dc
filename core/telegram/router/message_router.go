package router

import (
	"time"

	tg "evernotebot/core/telegram"
	"evernotebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls routing for plain text updates.
type TextOptions struct {
	// UnknownText handles text updates when no command matched and no
	// fallback is registered.
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the handler for text updates. Slash commands registered
// in the Registry win over the text fallback, so a command typed while a
// dialog is pending is still executed as a command.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

// MediaRoute describes a handler for a non-text update kind.
type MediaRoute struct {
	Endpoint string
	Name     string
	Handler  tele.HandlerFunc
}

// MediaRoutes wraps media handlers with the shared middleware chain and
// summary logging. Endpoints are telebot endpoint constants such as
// tele.OnPhoto or tele.OnVoice.
func MediaRoutes(routes []MediaRoute) []tg.Route {
	out := make([]tg.Route, 0, len(routes))
	for _, mr := range routes {
		if mr.Endpoint == "" || mr.Handler == nil {
			continue
		}
		name := normalizeHandlerName(mr.Name)
		h := mr.Handler
		wrapped := func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, name, start, "", "", func() error {
				return h(c)
			})
		}
		out = append(out, tg.Route{
			Endpoint: mr.Endpoint,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(wrapped)),
		})
	}
	return out
}
