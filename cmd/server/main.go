package main

import (
	"log"

	"whiteboard-backend/internal/config"
	"whiteboard-backend/internal/server"
)

func main() {
	cfg := config.Load()

	srv := server.New(cfg)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
