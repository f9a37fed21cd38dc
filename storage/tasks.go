package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"evernotebot/core/logger"
	"log/slog"
)

// Tasks is the sqlx-backed repository for deferred media downloads.
type Tasks struct {
	db *sqlx.DB
}

// NewTasks wires the repository to a database handle.
func NewTasks(db *sqlx.DB) *Tasks {
	return &Tasks{db: db}
}

// Create records a download task. Tasks always start incomplete; only
// the download worker flips the flag.
func (r *Tasks) Create(ctx context.Context, task *DownloadTask) error {
	const q = `
		INSERT INTO download_tasks (user_id, file_id, file_size, completed)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at`

	start := time.Now()
	err := r.db.QueryRowxContext(ctx, q, task.UserID, task.FileID, task.FileSize).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		logger.Error(ctx, "service.requests", "task.create.fail",
			slog.Int64("user_id", task.UserID),
			slog.String("file_id", task.FileID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("storage: create download task for user %d: %w", task.UserID, err)
	}
	logger.Debug(ctx, "service.requests", "task.create.success",
		slog.Int64("user_id", task.UserID),
		slog.String("file_id", task.FileID),
		slog.Int64("file_size", task.FileSize),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
