// server/cmd/api/main.go
package main

import (
	"log"

	"hospital-pharmacy-api-server/config"
	"hospital-pharmacy-api-server/internal/api/routes"
	"hospital-pharmacy-api-server/internal/auth"
	"hospital-pharmacy-api-server/internal/database"
	"hospital-pharmacy-api-server/internal/stock"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load .env (optional) and configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment and config file")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT secret is not configured")
	}
	auth.JwtSecret = []byte(cfg.JWT.Secret)

	// 2. Connect MongoDB
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// 3. Create the indexes the stock invariants depend on
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// 4. Make sure a superadmin account exists
	if err := database.SeedSuperAdmin(db); err != nil {
		log.Fatalf("Failed to seed super admin: %v", err)
	}

	// 5. Wire the stock service and router
	stockService := stock.NewService(db, cfg.Stock)
	router := routes.SetupRouter(cfg, db, stockService)

	// 6. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
