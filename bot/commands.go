package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"evernotebot/core/logger"
	coretelegram "evernotebot/core/telegram"
	"evernotebot/core/telegram/commands"
	tghelpers "evernotebot/core/telegram/helpers"
	"evernotebot/core/telegram/keyboard"
	"evernotebot/storage"

	tele "gopkg.in/telebot.v4"
)

const (
	welcomeText = "Welcome to Evernoterobot! Everything you send here will be saved to Evernote. " +
		"Connect your Evernote account by setting an access token, then just send me text, photos, files or voice messages."
	helpText = "This bot saves everything you send into Evernote.\n\n" +
		"/notebook - select the notebook notes go to\n" +
		"/switch_mode - choose between one pinned note and a note per message\n" +
		"/help - show this message"
	notConnectedText = "Your Evernote account is not connected yet. Set an access token first."
	selectModeText   = "Please, select mode"

	notebookButtonsPerRow = 3
)

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.cmdStart,
		Description: "Start using the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.cmdHelp,
		Description: "How this bot works",
	})
	reg.RegisterCommand("/notebook", commands.Command{
		Handler:     a.cmdNotebook,
		Description: "Select the current notebook",
	})
	reg.RegisterCommand("/switch_mode", commands.Command{
		Handler:     a.cmdSwitchMode,
		Description: "Switch notes creating mode",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.cmdStats,
		Description: "Runtime counters",
		AdminOnly:   true,
		Hidden:      true,
	})
	return reg
}

func (a *App) cmdStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u := &storage.User{
		ID:             c.Sender().ID,
		TelegramChatID: c.Chat().ID,
		Mode:           storage.ModeMultipleNotes,
		State:          storage.StateIdle,
		Places:         storage.Places{},
	}
	if err := a.users.Create(ctx, u); err != nil {
		return err
	}
	return a.messenger.Post(ctx, u.TelegramChatID, welcomeText, nil)
}

func (a *App) cmdHelp(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.messenger.Post(ctx, c.Chat().ID, helpText, nil)
}

func (a *App) cmdNotebook(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok, err := a.knownUser(ctx, c)
	if err != nil || !ok {
		return err
	}
	if u.EvernoteAccessToken == "" {
		return a.messenger.Post(ctx, u.TelegramChatID, notConnectedText, nil)
	}

	notebooks, err := a.notebooks.UpdateCache(ctx, u)
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(notebooks))
	for _, nb := range notebooks {
		label := nb.Name
		if u.CurrentNotebook != nil && nb.GUID == u.CurrentNotebook.GUID {
			label = fmt.Sprintf("> %s <", nb.Name)
		}
		labels = append(labels, label)
	}

	u.State = storage.StateSelectNotebook
	if err := a.users.Save(ctx, u); err != nil {
		return err
	}
	markup := keyboard.ReplyButtons(keyboard.ChunkLabels(labels, notebookButtonsPerRow)...)
	return a.messenger.Post(ctx, u.TelegramChatID, "Please, select notebook", markup)
}

func (a *App) cmdSwitchMode(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok, err := a.knownUser(ctx, c)
	if err != nil || !ok {
		return err
	}

	labels := make([]string, 0, 2)
	for _, mode := range []string{storage.ModeOneNote, storage.ModeMultipleNotes} {
		label := modeDisplay(mode)
		if mode == u.Mode {
			label = fmt.Sprintf("> %s <", label)
		}
		labels = append(labels, label)
	}

	u.State = storage.StateSwitchMode
	if err := a.users.Save(ctx, u); err != nil {
		return err
	}
	markup := keyboard.ReplyButtons(keyboard.ChunkLabels(labels, 1)...)
	return a.messenger.Post(ctx, u.TelegramChatID, selectModeText, markup)
}

func (a *App) cmdStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	var sendErrors uint64
	if d := a.messenger.dispatcher.Load(); d != nil {
		sendErrors = d.ErrorCount()
	}
	text := fmt.Sprintf("commands: %d\nsend errors: %d", len(a.registry.Commands()), sendErrors)
	return a.messenger.Post(ctx, c.Chat().ID, text, nil)
}

// knownUser resolves the sender to a registered user. Unknown senders get
// a pointer to /start instead of an error.
func (a *App) knownUser(ctx context.Context, c tele.Context) (*storage.User, bool, error) {
	u, err := a.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warn(ctx, "tg", "user.unknown",
				slog.Int64("user_id", c.Sender().ID),
			)
			return nil, false, a.messenger.Post(ctx, c.Chat().ID, "Send /start first.", nil)
		}
		return nil, false, err
	}
	return u, true, nil
}

// modeDisplay renders a mode token like "one_note" as "One Note".
func modeDisplay(mode string) string {
	parts := strings.Split(mode, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
