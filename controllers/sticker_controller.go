package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"pairlink_server/services"
)

// StickerController serves the sticker catalog
type StickerController struct {
	StickerService *services.StickerService
}

// ListStickersHandler returns the catalog with presigned URLs.
func (c *StickerController) ListStickersHandler(w http.ResponseWriter, r *http.Request) {
	stickers, err := c.StickerService.ListStickers(context.Background())
	if err != nil {
		http.Error(w, "Failed to list stickers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stickers)
}
