package bot

import (
	"context"

	"log/slog"

	"evernotebot/core/logger"
	tghelpers "evernotebot/core/telegram/helpers"
	"evernotebot/service"
	"evernotebot/storage"

	tele "gopkg.in/telebot.v4"
)

// Tagged payloads recorded on TelegramUpdate rows. The worker decodes
// them by the row's request_type, so each kind carries only its own
// fields.
type textPayload struct {
	Text string `json:"text"`
}

type mediaPayload struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type locationPayload struct {
	Latitude  float32 `json:"latitude"`
	Longitude float32 `json:"longitude"`
}

// dispatchUser resolves the sender for message dispatch. Messages from
// unknown senders are dropped with a warning, not answered.
func (a *App) dispatchUser(ctx context.Context, c tele.Context) (*storage.User, bool) {
	u, err := tghelpers.CurrentUser[*storage.User](ctx, a.users, c.Sender().ID)
	if err != nil {
		logger.Warn(ctx, "tg", "dispatch.drop",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("reason", "user_not_found"),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return u, true
}

// handleText is the text fallback after command lookup: session state
// transitions first, then generic ingestion.
func (a *App) handleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok := a.dispatchUser(ctx, c)
	if !ok {
		return nil
	}

	text := c.Text()
	handled, err := a.session.HandleText(ctx, u, text)
	if handled || err != nil {
		return err
	}

	return a.ingest.AcceptRequest(ctx, u, service.RequestText, textPayload{Text: text})
}

func (a *App) handlePhoto(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok := a.dispatchUser(ctx, c)
	if !ok {
		return nil
	}
	photo := c.Message().Photo
	if photo == nil {
		return nil
	}
	payload := mediaPayload{
		FileID:   photo.FileID,
		FileSize: photo.FileSize,
		Caption:  c.Message().Caption,
	}
	variants := []service.MediaVariant{{FileID: photo.FileID, FileSize: photo.FileSize}}
	return a.ingest.AcceptMedia(ctx, u, service.RequestPhoto, payload, variants)
}

func (a *App) handleVideo(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok := a.dispatchUser(ctx, c)
	if !ok {
		return nil
	}
	video := c.Message().Video
	if video == nil {
		return nil
	}
	payload := mediaPayload{
		FileID:   video.FileID,
		FileSize: video.FileSize,
		MimeType: video.MIME,
		FileName: video.FileName,
		Caption:  c.Message().Caption,
	}
	variants := []service.MediaVariant{{FileID: video.FileID, FileSize: video.FileSize}}
	return a.ingest.AcceptMedia(ctx, u, service.RequestVideo, payload, variants)
}

func (a *App) handleDocument(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok := a.dispatchUser(ctx, c)
	if !ok {
		return nil
	}
	doc := c.Message().Document
	if doc == nil {
		return nil
	}
	payload := mediaPayload{
		FileID:   doc.FileID,
		FileSize: doc.FileSize,
		MimeType: doc.MIME,
		FileName: doc.FileName,
		Caption:  c.Message().Caption,
	}
	variants := []service.MediaVariant{{FileID: doc.FileID, FileSize: doc.FileSize}}
	return a.ingest.AcceptMedia(ctx, u, service.RequestDocument, payload, variants)
}

func (a *App) handleVoice(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok := a.dispatchUser(ctx, c)
	if !ok {
		return nil
	}
	voice := c.Message().Voice
	if voice == nil {
		return nil
	}
	payload := mediaPayload{
		FileID:   voice.FileID,
		FileSize: voice.FileSize,
		MimeType: voice.MIME,
	}
	variants := []service.MediaVariant{{FileID: voice.FileID, FileSize: voice.FileSize}}
	return a.ingest.AcceptMedia(ctx, u, service.RequestVoice, payload, variants)
}

// handleLocation ingests the coordinates only; locations never schedule
// a download task.
func (a *App) handleLocation(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	u, ok := a.dispatchUser(ctx, c)
	if !ok {
		return nil
	}
	loc := c.Message().Location
	if loc == nil {
		return nil
	}
	payload := locationPayload{
		Latitude:  loc.Lat,
		Longitude: loc.Lng,
	}
	return a.ingest.AcceptRequest(ctx, u, service.RequestLocation, payload)
}
