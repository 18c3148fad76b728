package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"mindtek-chatbot/internal/config"
	"mindtek-chatbot/internal/core"
	"mindtek-chatbot/internal/db"
	httpserver "mindtek-chatbot/internal/http"
	"mindtek-chatbot/internal/llm"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	cfg := config.FromEnv()

	// The store is optional: without DATABASE_URL the chat endpoint
	// still works, it just keeps no history between requests.
	var store core.Store
	var notifier core.Notifier
	if cfg.DatabaseURL != "" {
		dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := dbConn.PingContext(ctx); err != nil {
			cancel()
			log.Fatalf("failed to ping database: %v", err)
		}
		cancel()
		if err := db.Migrate(context.Background(), dbConn); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		store = db.NewRepository(dbConn)
		notifier = db.NewNotifier(dbConn, cfg.NotifyChannel)
	} else {
		if !cfg.StoreOptional {
			log.Fatal("DATABASE_URL must be set when STORE_OPTIONAL=false")
		}
		log.Print("DATABASE_URL not set, running without conversation history")
	}

	llmClient := llm.NewOpenAIClient(cfg.OpenAIKey)

	engine := core.NewEngine(store, llmClient, core.EngineOptions{
		Model:         cfg.Model,
		Timeout:       cfg.CompletionTimeout,
		StoreOptional: cfg.StoreOptional,
	})
	extractor := core.NewExtractor(store, llmClient, notifier, core.ExtractorOptions{
		Model:   cfg.Model,
		Timeout: cfg.CompletionTimeout,
	})
	dashboard := core.NewDashboard(store)

	srv := httpserver.NewServer(engine, extractor, dashboard, store, cfg.Environment)

	addr := ":" + cfg.Port
	log.Printf("Listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
