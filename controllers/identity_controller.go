package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// IdentityController handles anonymous identity issuance
type IdentityController struct {
	IdentityService *services.IdentityService
}

// SignInAnonymouslyHandler mints an anonymous identity.
func (c *IdentityController) SignInAnonymouslyHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := c.IdentityService.SignInAnonymously(context.Background())
	if err != nil {
		http.Error(w, "Failed to create identity", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity)
}

// GetIdentityHandler returns a previously issued identity.
func (c *IdentityController) GetIdentityHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	identity, err := c.IdentityService.GetIdentity(context.Background(), userID)
	if errors.Is(err, services.ErrItemNotFound) {
		http.Error(w, "Identity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch identity", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity)
}
