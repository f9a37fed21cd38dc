package helpers

import "context"

// CurrentUser resolves a Telegram user ID to a domain entity via a service that
// implements GetByTelegramID. The generic type T allows different bots to
// supply their own user model.
func CurrentUser[T any](
	ctx context.Context,
	service interface {
		GetByTelegramID(context.Context, int64) (T, error)
	},
	tgID int64,
) (T, error) {
	var zero T
	if service == nil {
		return zero, nil
	}
	return service.GetByTelegramID(ctx, tgID)
}
