// Package main is the entry point for the variamidi API server
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/variamidi/variamidi/pkg/api"
	"github.com/variamidi/variamidi/pkg/config"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	log.Printf("Starting variamidi API server on %s", cfg.Addr())
	log.Printf("Swagger docs available at http://%s/swagger/index.html", cfg.Addr())
	if err := api.StartServer(cfg); err != nil {
		log.Fatal("Server error: ", err)
	}
}
