package helpers

import (
	"context"
	"errors"
	"sync/atomic"

	"log/slog"

	"evernotebot/core/logger"
	"evernotebot/core/telegram/sender"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by Dispatch.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// Dispatch enqueues run on the async sender. When no dispatcher is wired,
// or the queue is full or closed, the job runs synchronously instead so
// the message is never silently lost.
func Dispatch(ctx context.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("error", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}
