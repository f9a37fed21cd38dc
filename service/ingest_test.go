package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textPayload struct {
	Text string `json:"text"`
}

func TestAcceptRequestAckThenRecord(t *testing.T) {
	msg := &fakeMessenger{}
	updates := &fakeUpdates{}
	tasks := &fakeTasks{}
	svc := NewIngest(msg, updates, tasks)
	u := testUser()

	err := svc.AcceptRequest(context.Background(), u, RequestText, textPayload{Text: "remember this"})
	require.NoError(t, err)

	require.Len(t, msg.sent, 1)
	assert.Equal(t, "🔄 Accepted", msg.sent[0].Text)
	assert.Equal(t, u.TelegramChatID, msg.sent[0].ChatID)

	require.Len(t, updates.created, 1)
	rec := updates.created[0]
	assert.Equal(t, u.ID, rec.UserID)
	assert.Equal(t, RequestText, rec.RequestType)
	assert.Equal(t, 1, rec.StatusMessageID, "record references the acknowledgment")
	assert.JSONEq(t, `{"text":"remember this"}`, string(rec.Data))
	assert.Empty(t, tasks.created)
}

func TestAcceptRequestSendFailureCreatesNothing(t *testing.T) {
	msg := &fakeMessenger{sendErr: errors.New("telegram unavailable")}
	updates := &fakeUpdates{}
	svc := NewIngest(msg, updates, &fakeTasks{})

	err := svc.AcceptRequest(context.Background(), testUser(), RequestText, textPayload{})
	require.Error(t, err)
	assert.Empty(t, updates.created, "no record without an acknowledgment")
}

func TestAcceptRequestRecordFailureSurfaces(t *testing.T) {
	msg := &fakeMessenger{}
	updates := &fakeUpdates{createErr: errors.New("insert failed")}
	svc := NewIngest(msg, updates, &fakeTasks{})

	err := svc.AcceptRequest(context.Background(), testUser(), RequestText, textPayload{})
	require.Error(t, err)
	require.Len(t, msg.sent, 1, "acknowledgment already went out")
}

func TestAcceptMediaPicksLargestVariant(t *testing.T) {
	msg := &fakeMessenger{}
	tasks := &fakeTasks{}
	svc := NewIngest(msg, &fakeUpdates{}, tasks)
	u := testUser()

	variants := []MediaVariant{
		{FileID: "small", FileSize: 1024},
		{FileID: "large", FileSize: 8192},
		{FileID: "medium", FileSize: 4096},
	}
	require.NoError(t, svc.AcceptMedia(context.Background(), u, RequestPhoto, textPayload{}, variants))

	require.Len(t, tasks.created, 1)
	assert.Equal(t, "large", tasks.created[0].FileID)
	assert.Equal(t, int64(8192), tasks.created[0].FileSize)
	assert.False(t, tasks.created[0].Completed)
}

func TestLargestVariantTieKeepsFirst(t *testing.T) {
	best, ok := LargestVariant([]MediaVariant{
		{FileID: "first", FileSize: 4096},
		{FileID: "second", FileSize: 4096},
	})
	require.True(t, ok)
	assert.Equal(t, "first", best.FileID)
}

func TestLargestVariantEmpty(t *testing.T) {
	_, ok := LargestVariant(nil)
	assert.False(t, ok)
}

func TestAcceptMediaNoVariants(t *testing.T) {
	msg := &fakeMessenger{}
	updates := &fakeUpdates{}
	tasks := &fakeTasks{}
	svc := NewIngest(msg, updates, tasks)

	err := svc.AcceptMedia(context.Background(), testUser(), RequestVideo, textPayload{}, nil)
	require.Error(t, err)
	assert.Len(t, updates.created, 1, "generic pair still recorded")
	assert.Empty(t, tasks.created)
}

func TestAcceptMediaAckFailureSkipsTask(t *testing.T) {
	msg := &fakeMessenger{sendErr: errors.New("telegram unavailable")}
	tasks := &fakeTasks{}
	svc := NewIngest(msg, &fakeUpdates{}, tasks)

	err := svc.AcceptMedia(context.Background(), testUser(), RequestPhoto, textPayload{},
		[]MediaVariant{{FileID: "f", FileSize: 1}})
	require.Error(t, err)
	assert.Empty(t, tasks.created)
}
