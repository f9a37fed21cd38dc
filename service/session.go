package service

import (
	"context"
	"fmt"
	"strings"

	"evernotebot/evernote"
	"evernotebot/storage"
	"log/slog"

	"evernotebot/core/logger"
	"evernotebot/core/telegram/keyboard"
)

// Copy used by the state machine. The note title matches what the
// download worker expects to find in one_note mode.
const (
	pinnedNoteTitle    = "Note for Evernoterobot"
	selectNotebookText = "Please, select notebook"
)

// Session drives the per-user state machine: idle, select_notebook and
// switch_mode. Transitions mutate the user record through UserSaver and
// are persisted synchronously before any confirmation reaches the user.
type Session struct {
	users     UserSaver
	notebooks *Notebooks
	notes     NoteStore
	msg       Messenger
}

// NewSession wires the state machine.
func NewSession(users UserSaver, notebooks *Notebooks, notes NoteStore, msg Messenger) *Session {
	return &Session{users: users, notebooks: notebooks, notes: notes, msg: msg}
}

// StripSelectionMark removes the "> name <" wrapper the reply keyboard
// puts around the currently selected item. It reports whether the
// wrapper was present.
func StripSelectionMark(s string) (string, bool) {
	if strings.HasPrefix(s, "> ") && strings.HasSuffix(s, " <") && len(s) >= 4 {
		return s[2 : len(s)-2], true
	}
	return s, false
}

// NormalizeMode turns human-readable mode text into the stored token:
// wrapper stripped, spaces replaced with underscores, lowercased.
func NormalizeMode(s string) string {
	s, _ = StripSelectionMark(s)
	return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
}

// HandleText interprets free text against the user's current state. It
// reports handled=false when the user is idle (or in an unknown state),
// in which case the message falls through to request ingestion.
func (s *Session) HandleText(ctx context.Context, u *storage.User, text string) (bool, error) {
	switch u.State {
	case storage.StateSelectNotebook:
		name, _ := StripSelectionMark(text)
		return true, s.SetCurrentNotebook(ctx, u, name)
	case storage.StateSwitchMode:
		return true, s.SetMode(ctx, u, text)
	default:
		return false, nil
	}
}

// SetCurrentNotebook matches name against the user's notebooks (exact,
// case-sensitive). On a match the selection is persisted, the state is
// cleared, and in one_note mode a pinned note is created in the chosen
// notebook. On no match the user is re-prompted and the state is left
// untouched.
func (s *Session) SetCurrentNotebook(ctx context.Context, u *storage.User, name string) error {
	notebooks, err := s.notebooks.List(ctx, u)
	if err != nil {
		return err
	}

	for _, nb := range notebooks {
		if nb.Name != name {
			continue
		}

		u.CurrentNotebook = &storage.Notebook{GUID: nb.GUID, Name: nb.Name}
		u.State = storage.StateIdle
		if err := s.users.Save(ctx, u); err != nil {
			return err
		}

		if u.Mode == storage.ModeOneNote {
			if err := s.pinNote(ctx, u, nb.GUID); err != nil {
				return err
			}
		}

		logger.Info(ctx, "service.session", "notebook.selected",
			slog.Int64("user_id", u.ID),
			slog.String("notebook", nb.Name),
			slog.String("mode", u.Mode),
		)
		return s.msg.Post(ctx, u.TelegramChatID,
			fmt.Sprintf("From now your current notebook is: %s", name),
			keyboard.RemoveKeyboard())
	}

	// Not a hard failure: keep select_notebook and ask again.
	logger.Debug(ctx, "service.session", "notebook.no_match",
		slog.Int64("user_id", u.ID),
		slog.String("payload", logger.SanitizeLimit(name, 128)),
	)
	return s.msg.Post(ctx, u.TelegramChatID, selectNotebookText, nil)
}

// SetMode switches the bot mode for the user. The confirmation carries
// the human-readable text before normalization; the stored token is the
// normalized form. Entering one_note creates the pinned note and reports
// progress by editing a placeholder message in place.
func (s *Session) SetMode(ctx context.Context, u *storage.User, raw string) error {
	display, _ := StripSelectionMark(raw)
	mode := NormalizeMode(raw)

	// Confirmation goes out before the mode-specific side effects.
	if _, err := s.msg.Send(ctx, u.TelegramChatID,
		fmt.Sprintf("From now this bot in mode %q", display),
		keyboard.RemoveKeyboard()); err != nil {
		return err
	}

	u.Mode = mode
	u.State = storage.StateIdle
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	logger.Info(ctx, "service.session", "mode.switched",
		slog.Int64("user_id", u.ID),
		slog.String("mode", mode),
	)

	if mode != storage.ModeOneNote {
		return nil
	}

	if u.CurrentNotebook == nil {
		// No notebook selected yet: the pinned note is created by the
		// selection path once the user picks one.
		return s.msg.Post(ctx, u.TelegramChatID,
			"Select a notebook with /notebook and I will create your note there", nil)
	}

	placeholderID, err := s.msg.Send(ctx, u.TelegramChatID, "Please wait", nil)
	if err != nil {
		return err
	}
	if err := s.pinNote(ctx, u, ""); err != nil {
		return err
	}
	return s.msg.Edit(ctx, u.TelegramChatID, placeholderID,
		fmt.Sprintf("Bot switched to mode %q. New note was created", display))
}

// pinNote creates the note that one_note mode appends to and records it
// under the current notebook's guid. The user record is saved before
// the method returns.
func (s *Session) pinNote(ctx context.Context, u *storage.User, notebookGUID string) error {
	if u.CurrentNotebook == nil {
		return fmt.Errorf("service: pin note for user %d: no current notebook", u.ID)
	}
	noteGUID, err := s.notes.CreateNote(ctx, u.EvernoteAccessToken, evernote.NoteDraft{
		Title:        pinnedNoteTitle,
		NotebookGUID: notebookGUID,
	})
	if err != nil {
		return fmt.Errorf("service: create pinned note for user %d: %w", u.ID, err)
	}
	if u.Places == nil {
		u.Places = storage.Places{}
	}
	u.Places[u.CurrentNotebook.GUID] = noteGUID
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	logger.Debug(ctx, "service.session", "note.pinned",
		slog.Int64("user_id", u.ID),
		slog.String("notebook_guid", u.CurrentNotebook.GUID),
	)
	return nil
}
