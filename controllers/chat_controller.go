package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"pairlink_server/models"
	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// RoomNotifier pushes live updates to connected room sessions. The
// socket server implements it; controllers stay transport-agnostic.
type RoomNotifier interface {
	NotifyMessage(roomID string, message models.Message)
	NotifyRoom(roomID string, room models.Room)
}

// ChatStore is the slice of the chat service the controller uses.
type ChatStore interface {
	GetMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	SendMessage(ctx context.Context, message models.Message) (*models.Message, error)
	ToggleReaction(ctx context.Context, roomID, createdAt, messageID, emoji, identity string) (*models.Message, error)
}

// RoomStore is the slice of the room service the controller uses.
type RoomStore interface {
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	SetTyping(ctx context.Context, roomID, identity string, typing bool) error
	TouchLastMessage(ctx context.Context, roomID, createdAt string) error
}

// ChatController handles HTTP requests for the message stream
type ChatController struct {
	ChatService ChatStore
	RoomService RoomStore
	Notifier    RoomNotifier
}

// GetMessagesHandler returns the latest messages in ascending order, capped at 50.
func (c *ChatController) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := c.ChatService.GetMessages(context.Background(), roomID, limit)
	if err != nil {
		http.Error(w, "Failed to fetch messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// SendMessageHandler stores a message and fans it out. The room's
// lastMessageAt bump is a second write; its failure does not fail the
// send.
func (c *ChatController) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var message models.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	message.RoomID = roomID
	if message.SenderID == "" {
		http.Error(w, "senderId is required", http.StatusBadRequest)
		return
	}
	if err := message.ValidatePayload(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Sending clears the sender's typing flag before the message
	// write; best-effort, like the unmount cleanup.
	if err := c.RoomService.SetTyping(context.Background(), roomID, message.SenderID, false); err != nil {
		log.Printf("failed to clear typing for room %s: %v", roomID, err)
	}

	stored, err := c.ChatService.SendMessage(context.Background(), message)
	if err != nil {
		http.Error(w, "Failed to store message", http.StatusInternalServerError)
		return
	}

	if err := c.RoomService.TouchLastMessage(context.Background(), roomID, stored.CreatedAt); err != nil {
		log.Printf("failed to bump lastMessageAt for room %s: %v", roomID, err)
	}

	if c.Notifier != nil {
		c.Notifier.NotifyMessage(roomID, *stored)
		c.notifyRoom(roomID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stored)
}

// notifyRoom fans the room snapshot out so live sessions observe the
// cleared typing flag and the bumped lastMessageAt.
func (c *ChatController) notifyRoom(roomID string) {
	room, err := c.RoomService.GetRoom(context.Background(), roomID)
	if err != nil {
		return
	}
	c.Notifier.NotifyRoom(roomID, *room)
}

// ToggleReactionHandler flips the caller's reaction on a message.
func (c *ChatController) ToggleReactionHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var request struct {
		MessageID string `json:"messageId"`
		CreatedAt string `json:"createdAt"`
		Emoji     string `json:"emoji"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil ||
		request.MessageID == "" || request.CreatedAt == "" || request.Emoji == "" || request.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := c.ChatService.ToggleReaction(context.Background(), roomID, request.CreatedAt, request.MessageID, request.Emoji, request.UserID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "Message not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to toggle reaction", http.StatusInternalServerError)
		return
	}

	if c.Notifier != nil {
		c.Notifier.NotifyMessage(roomID, *updated)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
