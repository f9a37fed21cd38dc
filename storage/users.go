package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"evernotebot/core/logger"
	"log/slog"
)

// Users is the sqlx-backed user repository.
type Users struct {
	db *sqlx.DB
}

// NewUsers wires the repository to a database handle.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// GetByTelegramID loads the user for a Telegram sender id. A miss is
// reported as ErrNotFound; the bot never creates users implicitly here.
func (r *Users) GetByTelegramID(ctx context.Context, id int64) (*User, error) {
	const q = `
		SELECT id, telegram_chat_id, evernote_access_token, mode, state,
		       current_notebook, places, created_at, updated_at
		FROM users
		WHERE id = $1`

	var u User
	u.CurrentNotebook = &Notebook{}
	start := time.Now()
	err := r.db.GetContext(ctx, &u, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "service.users", "get.fail",
			slog.Int64("user_id", id),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("storage: get user %d: %w", id, err)
	}
	if u.CurrentNotebook != nil && u.CurrentNotebook.GUID == "" && u.CurrentNotebook.Name == "" {
		u.CurrentNotebook = nil
	}
	if u.Places == nil {
		u.Places = Places{}
	}
	return &u, nil
}

// Create inserts a fresh user record, or refreshes the chat id when the
// user already exists (re-running /start must not fail).
func (r *Users) Create(ctx context.Context, u *User) error {
	const q = `
		INSERT INTO users (id, telegram_chat_id, evernote_access_token, mode, state, current_notebook, places)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET telegram_chat_id = EXCLUDED.telegram_chat_id,
		    updated_at = now()`

	if u.Mode == "" {
		u.Mode = ModeMultipleNotes
	}
	if u.Places == nil {
		u.Places = Places{}
	}
	start := time.Now()
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.TelegramChatID, u.EvernoteAccessToken, u.Mode, u.State, u.CurrentNotebook, u.Places)
	if err != nil {
		logger.Error(ctx, "service.users", "create.fail",
			slog.Int64("user_id", u.ID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("storage: create user %d: %w", u.ID, err)
	}
	logger.Debug(ctx, "service.users", "create.success",
		slog.Int64("user_id", u.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// Save persists the full mutable state of the user record. Every
// session transition calls this synchronously; a failed save must
// surface to the caller.
func (r *Users) Save(ctx context.Context, u *User) error {
	const q = `
		UPDATE users
		SET telegram_chat_id = $2,
		    evernote_access_token = $3,
		    mode = $4,
		    state = $5,
		    current_notebook = $6,
		    places = $7,
		    updated_at = now()
		WHERE id = $1`

	start := time.Now()
	res, err := r.db.ExecContext(ctx, q,
		u.ID, u.TelegramChatID, u.EvernoteAccessToken, u.Mode, u.State, u.CurrentNotebook, u.Places)
	if err != nil {
		logger.Error(ctx, "service.users", "save.fail",
			slog.Int64("user_id", u.ID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("storage: save user %d: %w", u.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: save user %d: %w", u.ID, ErrNotFound)
	}
	logger.Debug(ctx, "service.users", "save.success",
		slog.Int64("user_id", u.ID),
		slog.String("state", u.State),
		slog.String("mode", u.Mode),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
