package routes

import (
	"pairlink_server/controllers"
	"pairlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterIdentityRoutes registers the anonymous identity route
func RegisterIdentityRoutes(router *mux.Router, identityService *services.IdentityService) {
	controller := &controllers.IdentityController{IdentityService: identityService}

	router.HandleFunc("/api/identity", controller.SignInAnonymouslyHandler).Methods("POST")
	router.HandleFunc("/api/identity/{userId}", controller.GetIdentityHandler).Methods("GET")
}
