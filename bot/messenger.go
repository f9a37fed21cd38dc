package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	tghelpers "evernotebot/core/telegram/helpers"
	"evernotebot/core/telegram/middleware"
	tgsender "evernotebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// telegramMessenger implements service.Messenger over a telebot instance.
// Send is synchronous so callers get the message id back; Post goes
// through the async sender dispatcher and falls back to a synchronous
// send when the queue is saturated.
type telegramMessenger struct {
	bot        atomic.Pointer[tele.Bot]
	dispatcher atomic.Pointer[tgsender.Dispatcher]
}

var errNotStarted = errors.New("bot: telegram not started")

func (m *telegramMessenger) attach(b *tele.Bot, d *tgsender.Dispatcher) {
	m.bot.Store(b)
	m.dispatcher.Store(d)
}

func (m *telegramMessenger) detach() {
	m.bot.Store(nil)
	m.dispatcher.Store(nil)
}

func (m *telegramMessenger) Send(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	b := m.bot.Load()
	if b == nil {
		return 0, errNotStarted
	}
	var (
		msg *tele.Message
		err error
	)
	if markup != nil {
		msg, err = b.Send(tele.ChatID(chatID), text, markup)
	} else {
		msg, err = b.Send(tele.ChatID(chatID), text)
	}
	if err != nil {
		return 0, fmt.Errorf("bot: send to chat %d: %w", chatID, err)
	}
	middleware.CountersFrom(ctx).Add(markup != nil)
	return msg.ID, nil
}

func (m *telegramMessenger) Post(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	b := m.bot.Load()
	if b == nil {
		return errNotStarted
	}
	err := tghelpers.Dispatch(ctx, "send.text", "sendMessage", func() error {
		var err error
		if markup != nil {
			_, err = b.Send(tele.ChatID(chatID), text, markup)
		} else {
			_, err = b.Send(tele.ChatID(chatID), text)
		}
		return err
	})
	if err != nil {
		return err
	}
	middleware.CountersFrom(ctx).Add(markup != nil)
	return nil
}

func (m *telegramMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	b := m.bot.Load()
	if b == nil {
		return errNotStarted
	}
	ref := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	if _, err := b.Edit(ref, text); err != nil {
		return fmt.Errorf("bot: edit message %d in chat %d: %w", messageID, chatID, err)
	}
	middleware.CountersFrom(ctx).Add(false)
	return nil
}
