package main

import (
	"log"
	"net/http"

	"forecast-server/src/api"
	"forecast-server/src/config"
	"forecast-server/src/db"
	plaidclient "forecast-server/src/plaid"

	"github.com/plaid/plaid-go/v41/plaid"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	db.InitCache()

	// Plaid is optional; without credentials the live balance routes
	// respond with a configuration error.
	var client *plaid.APIClient
	if cfg.PlaidClientID != "" && cfg.PlaidSecret != "" {
		client = plaidclient.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	} else {
		log.Println("INFO: Plaid credentials not set, live balance seeding disabled")
	}

	// Router
	router := api.NewRouter(pool, client, cfg.DemoMode)

	if cfg.DemoMode {
		log.Println("INFO: Running in demo mode")
	}
	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
