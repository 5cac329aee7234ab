package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pairlink_server/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callLog struct {
	calls []string
}

type fakeChatStore struct {
	log     *callLog
	sendErr error
}

func (f *fakeChatStore) GetMessages(context.Context, string, int) ([]models.Message, error) {
	return nil, nil
}

func (f *fakeChatStore) SendMessage(_ context.Context, m models.Message) (*models.Message, error) {
	f.log.calls = append(f.log.calls, "send")
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	m.MessageID = "m1"
	m.CreatedAt = "2025-06-01T12:00:00Z"
	m.Reactions = map[string][]string{}
	return &m, nil
}

func (f *fakeChatStore) ToggleReaction(context.Context, string, string, string, string, string) (*models.Message, error) {
	return nil, errors.New("not implemented")
}

type fakeRoomStore struct {
	log       *callLog
	typingErr error
}

func (f *fakeRoomStore) GetRoom(_ context.Context, roomID string) (*models.Room, error) {
	return &models.Room{ID: roomID, Members: []string{"host", "guest"}}, nil
}

func (f *fakeRoomStore) SetTyping(_ context.Context, roomID, identity string, typing bool) error {
	f.log.calls = append(f.log.calls, fmt.Sprintf("typing %s %s %v", roomID, identity, typing))
	return f.typingErr
}

func (f *fakeRoomStore) TouchLastMessage(_ context.Context, roomID, _ string) error {
	f.log.calls = append(f.log.calls, "touch "+roomID)
	return nil
}

type fakeNotifier struct {
	messages int
	rooms    int
}

func (f *fakeNotifier) NotifyMessage(string, models.Message) { f.messages++ }
func (f *fakeNotifier) NotifyRoom(string, models.Room)       { f.rooms++ }

func postMessage(t *testing.T, c *ChatController, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/api/rooms/{roomId}/messages", c.SendMessageHandler).Methods("POST")

	req := httptest.NewRequest("POST", "/api/rooms/r1/messages", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSendMessage_ClearsTypingBeforeStoring(t *testing.T) {
	log := &callLog{}
	notifier := &fakeNotifier{}
	c := &ChatController{
		ChatService: &fakeChatStore{log: log},
		RoomService: &fakeRoomStore{log: log},
		Notifier:    notifier,
	}

	rec := postMessage(t, c, `{"senderId":"host","type":"text","text":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.GreaterOrEqual(t, len(log.calls), 3)
	assert.Equal(t, "typing r1 host false", log.calls[0], "typing clears before the message write")
	assert.Equal(t, "send", log.calls[1])
	assert.Equal(t, "touch r1", log.calls[2])
	assert.Equal(t, 1, notifier.messages)
	assert.Equal(t, 1, notifier.rooms)
}

func TestSendMessage_TypingClearFailureIsSwallowed(t *testing.T) {
	log := &callLog{}
	c := &ChatController{
		ChatService: &fakeChatStore{log: log},
		RoomService: &fakeRoomStore{log: log, typingErr: errors.New("throttled")},
		Notifier:    &fakeNotifier{},
	}

	rec := postMessage(t, c, `{"senderId":"host","type":"text","text":"hi"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, log.calls, "send", "send proceeds past the failed clear")
}

func TestSendMessage_RejectsBadPayloadWithoutSideEffects(t *testing.T) {
	log := &callLog{}
	c := &ChatController{
		ChatService: &fakeChatStore{log: log},
		RoomService: &fakeRoomStore{log: log},
		Notifier:    &fakeNotifier{},
	}

	rec := postMessage(t, c, `{"senderId":"host","type":"text"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, log.calls)
}
