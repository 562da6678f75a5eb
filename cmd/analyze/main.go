package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"skillmatch/internal/catalog"
	"skillmatch/internal/extraction"
	"skillmatch/internal/llm"
	"skillmatch/internal/pipeline"
	"skillmatch/internal/storage"
	"skillmatch/internal/store"
	"skillmatch/pkg/logger"
)

// rulesFile is the YAML shape accepted by -rules.
type rulesFile struct {
	Language string   `yaml:"language"`
	Rules    []string `yaml:"rules"`
}

func main() {
	logger.Setup()
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	catalogPath := flag.String("catalog", "certificates.json", "path to the certificate catalog JSON")
	rulesPath := flag.String("rules", "", "path to a YAML file with language and rules")
	language := flag.String("lang", "en", "response language (en or ar)")
	dataDir := flag.String("data", "data", "directory for persisted state")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("No CV files given")
		os.Exit(1)
	}

	apiKey := os.Getenv("GEMINI_KEY")
	if apiKey == "" {
		slog.Error("GEMINI_KEY not found in environment variables")
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := llm.NewClient(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		slog.Error("Error creating completion client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	cat := catalog.New(catalog.NewLoader(*catalogPath).Load())
	engine := llm.NewEngine(client, cat)
	persist := storage.New(*dataDir)

	rules := storage.DefaultRules(*language)
	lang := *language
	if *rulesPath != "" {
		data, err := os.ReadFile(*rulesPath)
		if err != nil {
			slog.Error("Failed to read rules file", "path", *rulesPath, "error", err)
			os.Exit(1)
		}
		var rf rulesFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			slog.Error("Failed to parse rules file", "path", *rulesPath, "error", err)
			os.Exit(1)
		}
		if len(rf.Rules) > 0 {
			rules = rf.Rules
		}
		if rf.Language != "" {
			lang = rf.Language
		}
	}

	recs := store.New(persist)
	pipe := pipeline.New(engine, recs)

	for _, path := range files {
		text, err := extraction.ExtractFile(path)
		if err != nil {
			slog.Error("Failed to extract CV", "path", path, "error", err)
			os.Exit(1)
		}
		pipe.Add(path, text)
	}

	pipe.StructureAll(ctx)
	agg := pipe.RecommendAll(ctx, rules, lang)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(agg); err != nil {
		slog.Error("Failed to encode aggregate", "error", err)
		os.Exit(1)
	}
}
