package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// InviteController handles HTTP requests for invite creation and claiming
type InviteController struct {
	InviteService *services.InviteService
}

// CreateInviteHandler creates a room plus an open invite for the host.
func (c *InviteController) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		HostID string `json:"hostId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.HostID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := c.InviteService.CreateInvite(context.Background(), request.HostID)
	if err != nil {
		http.Error(w, "Failed to create invite", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(created)
}

// GetInviteHandler returns an invite by code, for the host polling claim status.
func (c *InviteController) GetInviteHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	invite, err := c.InviteService.GetInvite(context.Background(), code)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "Invite not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch invite", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invite)
}

// ClaimInviteHandler runs the claim transaction. The response is
// always 200 with the tagged result; full/expired/invalid are view
// states, not transport errors.
func (c *InviteController) ClaimInviteHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := c.InviteService.ClaimInvite(context.Background(), code, request.UserID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
