package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"skillmatch/internal/api"
	"skillmatch/internal/catalog"
	"skillmatch/internal/llm"
	"skillmatch/internal/pipeline"
	"skillmatch/internal/storage"
	"skillmatch/internal/store"
	"skillmatch/pkg/logger"
)

func main() {
	logger.Setup()
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}
	slog.Info("Starting skillmatch server...")

	apiKey := os.Getenv("GEMINI_KEY")
	if apiKey == "" {
		slog.Error("GEMINI_KEY not found in environment variables")
		os.Exit(1)
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			slog.Error("Invalid PORT value", "port", p, "error", err)
			os.Exit(1)
		}
		port = parsed
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "certificates.json"
	}

	ctx := context.Background()
	client, err := llm.NewClient(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		slog.Error("Error creating completion client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	cat := catalog.New(catalog.NewLoader(catalogPath).Load())
	slog.Info("Loaded certificate catalog", "entries", cat.Len())

	engine := llm.NewEngine(client, cat)
	persist := storage.New(dataDir)
	if cat.Len() > 0 {
		persist.Save(storage.CertCatalogKey, cat.Entries())
	}
	recs := store.New(persist)
	pipe := pipeline.New(engine, recs)

	server := api.NewServer(port, engine, pipe, cat, recs, persist)
	if err := server.Start(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
