package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"pairlink_server/config"
	"pairlink_server/routes"
	"pairlink_server/services"
	"pairlink_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	identityService := &services.IdentityService{Dynamo: dynamoService}
	inviteService := &services.InviteService{Dynamo: dynamoService, TTL: cfg.InviteTTL}
	roomService := &services.RoomService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService}
	stickerService := &services.StickerService{
		Client: services.InitializeS3Client(cfg.AWSRegion),
		Bucket: cfg.StickerBucket,
		Prefix: cfg.StickerPrefix,
	}

	// Real-time channel
	socketServer := socket.NewServer(roomService, chatService)
	go func() {
		if err := socketServer.IO.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.IO.Close()

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Pairlink")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterIdentityRoutes(r, identityService)
	routes.RegisterInviteRoutes(r, inviteService)
	routes.RegisterRoomRoutes(r, roomService, chatService, socketServer)
	routes.RegisterStickerRoutes(r, stickerService)
	r.Handle("/socket.io/", socketServer.IO)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
