package service

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"evernotebot/evernote"
	"evernotebot/storage"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Markup *tele.ReplyMarkup
	Async  bool
}

type editedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
}

type fakeMessenger struct {
	nextID  int
	sendErr error
	sent    []sentMessage
	edits   []editedMessage
}

func (m *fakeMessenger) Send(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.nextID++
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Markup: markup})
	return m.nextID, nil
}

func (m *fakeMessenger) Post(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Markup: markup, Async: true})
	return nil
}

func (m *fakeMessenger) Edit(_ context.Context, chatID int64, messageID int, text string) error {
	m.edits = append(m.edits, editedMessage{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

type fakeNotes struct {
	notebooks   []evernote.Notebook
	listErr     error
	listCalls   int
	noteGUID    string
	createErr   error
	createCalls int
	lastDraft   evernote.NoteDraft
}

func (n *fakeNotes) ListNotebooks(_ context.Context, _ string) ([]evernote.Notebook, error) {
	n.listCalls++
	if n.listErr != nil {
		return nil, n.listErr
	}
	out := make([]evernote.Notebook, len(n.notebooks))
	copy(out, n.notebooks)
	return out, nil
}

func (n *fakeNotes) CreateNote(_ context.Context, _ string, draft evernote.NoteDraft) (string, error) {
	n.createCalls++
	n.lastDraft = draft
	if n.createErr != nil {
		return "", n.createErr
	}
	if n.noteGUID != "" {
		return n.noteGUID, nil
	}
	return fmt.Sprintf("note-%d", n.createCalls), nil
}

type fakeUsers struct {
	saveErr error
	saved   []storage.User
}

func (s *fakeUsers) Save(_ context.Context, u *storage.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, *u)
	return nil
}

type fakeUpdates struct {
	createErr error
	created   []storage.TelegramUpdate
}

func (s *fakeUpdates) Create(_ context.Context, upd *storage.TelegramUpdate) error {
	if s.createErr != nil {
		return s.createErr
	}
	upd.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *upd)
	return nil
}

type fakeTasks struct {
	createErr error
	created   []storage.DownloadTask
}

func (s *fakeTasks) Create(_ context.Context, task *storage.DownloadTask) error {
	if s.createErr != nil {
		return s.createErr
	}
	task.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *task)
	return nil
}
