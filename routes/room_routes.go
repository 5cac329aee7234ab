package routes

import (
	"pairlink_server/controllers"
	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterRoomRoutes registers room, message and reaction routes under `/api/rooms`
func RegisterRoomRoutes(router *mux.Router, roomService *services.RoomService, chatService *services.ChatService, notifier controllers.RoomNotifier) {
	roomController := &controllers.RoomController{RoomService: roomService, Notifier: notifier}
	chatController := &controllers.ChatController{ChatService: chatService, RoomService: roomService, Notifier: notifier}

	roomRouter := router.PathPrefix("/api/rooms").Subrouter()
	roomRouter.HandleFunc("/{roomId}", roomController.GetRoomHandler).Methods("GET")
	roomRouter.HandleFunc("/{roomId}/typing", roomController.SetTypingHandler).Methods("PUT")
	roomRouter.HandleFunc("/{roomId}/seen", roomController.MarkSeenHandler).Methods("PUT")
	roomRouter.HandleFunc("/{roomId}/messages", chatController.GetMessagesHandler).Methods("GET")
	roomRouter.HandleFunc("/{roomId}/messages", chatController.SendMessageHandler).Methods("POST")
	roomRouter.HandleFunc("/{roomId}/reactions", chatController.ToggleReactionHandler).Methods("POST")
}
