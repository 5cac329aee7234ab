package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// RoomController handles HTTP requests for room state and presence fields
type RoomController struct {
	RoomService *services.RoomService
	Notifier    RoomNotifier
}

// GetRoomHandler returns the room document.
func (c *RoomController) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	room, err := c.RoomService.GetRoom(context.Background(), roomID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(room)
}

// SetTypingHandler writes the caller's typing flag.
func (c *RoomController) SetTypingHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var request struct {
		UserID string `json:"userId"`
		Typing bool   `json:"typing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.RoomService.SetTyping(context.Background(), roomID, request.UserID, request.Typing); err != nil {
		http.Error(w, "Failed to update typing state", http.StatusInternalServerError)
		return
	}
	c.notifyRoom(roomID)

	json.NewEncoder(w).Encode(map[string]string{"message": "Typing state updated"})
}

// MarkSeenHandler stamps the caller's seen marker with the server time.
func (c *RoomController) MarkSeenHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	seenAt, err := c.RoomService.MarkSeen(context.Background(), roomID, request.UserID)
	if err != nil {
		http.Error(w, "Failed to update seen marker", http.StatusInternalServerError)
		return
	}
	c.notifyRoom(roomID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"seenAt": seenAt})
}

// notifyRoom re-reads the room and fans the snapshot out to live
// sessions, mirroring a document-store subscription push.
func (c *RoomController) notifyRoom(roomID string) {
	if c.Notifier == nil {
		return
	}
	room, err := c.RoomService.GetRoom(context.Background(), roomID)
	if err != nil {
		return
	}
	c.Notifier.NotifyRoom(roomID, *room)
}
