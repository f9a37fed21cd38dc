package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"evernotebot/cache"
	"evernotebot/evernote"
	"evernotebot/storage"
	"log/slog"

	"evernotebot/core/logger"
)

// Notebooks serves a user's notebook list cache-aside. Entries have no
// TTL; staleness is tolerated until UpdateCache overwrites them, which
// callers must do after any operation that could change the list.
type Notebooks struct {
	store cache.Store
	notes NoteStore
}

// NewNotebooks wires the cache store and the note service.
func NewNotebooks(store cache.Store, notes NoteStore) *Notebooks {
	return &Notebooks{store: store, notes: notes}
}

func notebooksKey(userID int64) string {
	return fmt.Sprintf("list_notebooks_%d", userID)
}

// List returns the user's notebooks. On a hit the cached value is
// decoded and returned without contacting the note service; on a miss
// the list is fetched, stored, and returned. Fetch failures propagate
// uncached.
func (s *Notebooks) List(ctx context.Context, u *storage.User) ([]evernote.Notebook, error) {
	key := notebooksKey(u.ID)

	data, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("service: notebooks cache get: %w", err)
	}
	if found {
		var notebooks []evernote.Notebook
		if err := json.Unmarshal(data, &notebooks); err != nil {
			// Corrupt entry: treat as a miss and refetch below.
			logger.Warn(ctx, "service.notebooks", "cache.decode_fail",
				slog.Int64("user_id", u.ID),
				slog.String("err", err.Error()),
			)
		} else {
			logger.Debug(ctx, "service.notebooks", "list",
				slog.Int64("user_id", u.ID),
				slog.String("cache", "hit"),
				slog.Int("count", len(notebooks)),
			)
			return notebooks, nil
		}
	}

	notebooks, err := s.fetchAndStore(ctx, u, key)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "service.notebooks", "list",
		slog.Int64("user_id", u.ID),
		slog.String("cache", "miss"),
		slog.Int("count", len(notebooks)),
	)
	return notebooks, nil
}

// UpdateCache unconditionally refetches the notebook list and
// overwrites the cache entry. This is the only invalidation path.
func (s *Notebooks) UpdateCache(ctx context.Context, u *storage.User) ([]evernote.Notebook, error) {
	notebooks, err := s.fetchAndStore(ctx, u, notebooksKey(u.ID))
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "service.notebooks", "list",
		slog.Int64("user_id", u.ID),
		slog.String("cache", "refresh"),
		slog.Int("count", len(notebooks)),
	)
	return notebooks, nil
}

func (s *Notebooks) fetchAndStore(ctx context.Context, u *storage.User, key string) ([]evernote.Notebook, error) {
	start := time.Now()
	notebooks, err := s.notes.ListNotebooks(ctx, u.EvernoteAccessToken)
	if err != nil {
		// The cache must never hold a failure or partial result.
		return nil, fmt.Errorf("service: list notebooks for user %d: %w", u.ID, err)
	}
	data, err := json.Marshal(notebooks)
	if err != nil {
		return nil, fmt.Errorf("service: encode notebooks for user %d: %w", u.ID, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return nil, fmt.Errorf("service: notebooks cache set: %w", err)
	}
	logger.Debug(ctx, "service.notebooks", "fetch.success",
		slog.Int64("user_id", u.ID),
		slog.Int("count", len(notebooks)),
		slog.Duration("duration", logger.Took(start)),
	)
	return notebooks, nil
}
