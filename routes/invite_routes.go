package routes

import (
	"pairlink_server/controllers"
	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterInviteRoutes registers all invite-related routes under `/api/invites`
func RegisterInviteRoutes(router *mux.Router, inviteService *services.InviteService) {
	controller := &controllers.InviteController{InviteService: inviteService}

	inviteRouter := router.PathPrefix("/api/invites").Subrouter()
	inviteRouter.HandleFunc("", controller.CreateInviteHandler).Methods("POST")             // Create room + invite
	inviteRouter.HandleFunc("/{code}", controller.GetInviteHandler).Methods("GET")          // Invite status
	inviteRouter.HandleFunc("/{code}/claim", controller.ClaimInviteHandler).Methods("POST") // Claim transaction
}
