package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"evernotebot/core/logger"
	"log/slog"
)

// Updates is the sqlx-backed repository for pending request records.
type Updates struct {
	db *sqlx.DB
}

// NewUpdates wires the repository to a database handle.
func NewUpdates(db *sqlx.DB) *Updates {
	return &Updates{db: db}
}

// Create inserts exactly one record per accepted request. The record
// references the acknowledgment message so the worker can edit it later.
func (r *Updates) Create(ctx context.Context, upd *TelegramUpdate) error {
	const q = `
		INSERT INTO telegram_updates (user_id, request_type, status_message_id, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	start := time.Now()
	err := r.db.QueryRowxContext(ctx, q,
		upd.UserID, upd.RequestType, upd.StatusMessageID, []byte(upd.Data)).
		Scan(&upd.ID, &upd.CreatedAt)
	if err != nil {
		logger.Error(ctx, "service.requests", "update.create.fail",
			slog.Int64("user_id", upd.UserID),
			slog.String("request_type", upd.RequestType),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("storage: create telegram update for user %d: %w", upd.UserID, err)
	}
	logger.Debug(ctx, "service.requests", "update.create.success",
		slog.Int64("user_id", upd.UserID),
		slog.String("request_type", upd.RequestType),
		slog.Int("status_message_id", upd.StatusMessageID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
