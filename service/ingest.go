package service

import (
	"context"
	"encoding/json"
	"fmt"

	"evernotebot/storage"
	"log/slog"

	"evernotebot/core/logger"
)

// Acknowledgment sent for every accepted request before the durable
// record is written.
const ackText = "🔄 Accepted"

// Request types recorded on TelegramUpdate rows.
const (
	RequestText     = "text"
	RequestPhoto    = "photo"
	RequestVideo    = "video"
	RequestDocument = "document"
	RequestVoice    = "voice"
	RequestLocation = "location"
)

// MediaVariant is one downloadable rendition of a media message. Photo
// messages carry several resolutions; other kinds carry exactly one.
type MediaVariant struct {
	FileID   string
	FileSize int64
}

// LargestVariant picks the variant with the maximum reported file size.
// Ties keep the first-encountered variant.
func LargestVariant(variants []MediaVariant) (MediaVariant, bool) {
	if len(variants) == 0 {
		return MediaVariant{}, false
	}
	best := variants[0]
	for _, v := range variants[1:] {
		if v.FileSize > best.FileSize {
			best = v
		}
	}
	return best, true
}

// Ingest turns inbound messages that reached the end of the dispatch
// chain into durable work records.
type Ingest struct {
	msg     Messenger
	updates UpdateCreator
	tasks   TaskCreator
}

// NewIngest wires the ingestor.
func NewIngest(msg Messenger, updates UpdateCreator, tasks TaskCreator) *Ingest {
	return &Ingest{msg: msg, updates: updates, tasks: tasks}
}

// AcceptRequest acknowledges the message and creates the TelegramUpdate
// record referencing the acknowledgment, as one logical unit. A failed
// acknowledgment aborts before anything is recorded; a failed record
// after a sent acknowledgment is surfaced to the caller, never
// swallowed.
func (s *Ingest) AcceptRequest(ctx context.Context, u *storage.User, requestType string, payload any) error {
	messageID, err := s.msg.Send(ctx, u.TelegramChatID, ackText, nil)
	if err != nil {
		return fmt.Errorf("service: acknowledge %s request for user %d: %w", requestType, u.ID, err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("service: encode %s payload for user %d: %w", requestType, u.ID, err)
	}

	rec := &storage.TelegramUpdate{
		UserID:          u.ID,
		RequestType:     requestType,
		StatusMessageID: messageID,
		Data:            data,
	}
	if err := s.updates.Create(ctx, rec); err != nil {
		// The user saw an acknowledgment that now has no backing record.
		logger.Error(ctx, "service.requests", "ingest.orphan_ack",
			slog.Int64("user_id", u.ID),
			slog.String("request_type", requestType),
			slog.Int("status_message_id", messageID),
			slog.String("err", err.Error()),
		)
		return err
	}

	logger.Info(ctx, "service.requests", "ingest.accepted",
		slog.Int64("user_id", u.ID),
		slog.String("request_type", requestType),
		slog.Int("status_message_id", messageID),
	)
	return nil
}

// AcceptMedia runs the generic acknowledgment/record pair and then
// schedules a download of the largest offered variant.
func (s *Ingest) AcceptMedia(ctx context.Context, u *storage.User, requestType string, payload any, variants []MediaVariant) error {
	if err := s.AcceptRequest(ctx, u, requestType, payload); err != nil {
		return err
	}

	best, ok := LargestVariant(variants)
	if !ok {
		return fmt.Errorf("service: %s request for user %d has no file variants", requestType, u.ID)
	}
	return s.tasks.Create(ctx, &storage.DownloadTask{
		UserID:   u.ID,
		FileID:   best.FileID,
		FileSize: best.FileSize,
	})
}
