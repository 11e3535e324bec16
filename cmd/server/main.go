package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "pos-terminal/internal/adapters/web"
	"pos-terminal/internal/app"
	"pos-terminal/internal/backend"
	"pos-terminal/internal/db"
	"pos-terminal/internal/printer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	tenantID, err := backend.DefaultTenantID(ctx, pool)
	if err != nil {
		log.Fatalf("tenant: %v", err)
	}

	tenant, err := backend.NewPgTenantConfig(pool, tenantID).Profile(ctx)
	if err != nil {
		log.Fatalf("tenant profile: %v", err)
	}

	catalog := backend.NewPgCatalog(pool, tenantID)
	directory := backend.NewPgDirectory(pool, tenantID)
	ledger := backend.NewPgLedger(pool, tenantID)

	agentURL := os.Getenv("PRINT_AGENT_URL")
	if agentURL == "" {
		log.Println("Warning: PRINT_AGENT_URL is not set, receipts fall back to the print dialog")
	}
	printSvc := printer.NewAgent(agentURL)

	svc := app.NewTerminalService(*tenant, catalog, directory, ledger, printSvc)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("terminal server for %q starting on :%s", tenant.Name, port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
