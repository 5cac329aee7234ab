package routes

import (
	"pairlink_server/controllers"
	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterStickerRoutes registers the sticker catalog route
func RegisterStickerRoutes(router *mux.Router, stickerService *services.StickerService) {
	controller := &controllers.StickerController{StickerService: stickerService}

	router.HandleFunc("/api/stickers", controller.ListStickersHandler).Methods("GET")
}
