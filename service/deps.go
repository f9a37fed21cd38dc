// Package service implements the message ingestion and session-state
// dispatch pipeline: notebook cache, per-user state machine, and request
// ingestion. External capabilities (Telegram, Evernote, persistence)
// are consumed through the interfaces declared here and injected at
// construction.
package service

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"evernotebot/evernote"
	"evernotebot/storage"
)

// Messenger sends and edits Telegram messages. Send is synchronous and
// returns the new message id; Post is fire-and-forget and may be
// executed asynchronously by the outbound dispatcher.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error)
	Post(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
}

// NoteStore is the note-service capability used by the pipeline.
type NoteStore interface {
	ListNotebooks(ctx context.Context, accessToken string) ([]evernote.Notebook, error)
	CreateNote(ctx context.Context, accessToken string, draft evernote.NoteDraft) (string, error)
}

// UserSaver persists user record mutations.
type UserSaver interface {
	Save(ctx context.Context, u *storage.User) error
}

// UpdateCreator records accepted requests for the worker.
type UpdateCreator interface {
	Create(ctx context.Context, upd *storage.TelegramUpdate) error
}

// TaskCreator records deferred media downloads.
type TaskCreator interface {
	Create(ctx context.Context, task *storage.DownloadTask) error
}
