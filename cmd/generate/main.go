package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/aigoflow/training-service/internal/config"
	"github.com/aigoflow/training-service/internal/dataset"
	"github.com/aigoflow/training-service/internal/gen"
)

// generate synthesizes training data against an OpenAI-compatible API.
// Two modes: "problems" emits question/solutions records across the
// physics theme list; "personas" rewrites an existing question file as
// in-character reasoning/answer records.
func main() {
	var (
		envFile   = flag.String("env", "", "Optional .env file to load")
		mode      = flag.String("mode", "problems", "Generation mode: problems or personas")
		questions = flag.String("questions", "questions.txt", "Question file for personas mode, one per line")
		output    = flag.String("output", "dataset.jsonl", "Output JSONL file")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.GenAPIKey == "" {
		slog.Error("GEN_API_KEY is required for dataset generation")
		os.Exit(1)
	}

	generator := gen.NewGenerator(gen.NewClient(cfg.GenAPIURL, cfg.GenAPIKey, cfg.GenModel))
	ctx := context.Background()

	switch *mode {
	case "problems":
		records, err := generator.Problems(ctx, gen.Themes)
		if err != nil {
			slog.Error("Problem generation failed", "error", err)
			os.Exit(1)
		}
		if err := dataset.WriteJSONLFile(*output, records); err != nil {
			slog.Error("Failed to write output", "file", *output, "error", err)
			os.Exit(1)
		}
		slog.Info("Problem dataset written", "file", *output, "records", len(records))

	case "personas":
		data, err := os.ReadFile(*questions)
		if err != nil {
			slog.Error("Failed to read questions file", "file", *questions, "error", err)
			os.Exit(1)
		}
		var qs []string
		for _, line := range strings.Split(string(data), "\n") {
			if q := strings.TrimSpace(line); q != "" {
				qs = append(qs, q)
			}
		}

		records, err := generator.Personas(ctx, qs, cfg.GenBatch)
		if err != nil {
			slog.Error("Persona generation failed", "error", err)
			os.Exit(1)
		}
		if err := dataset.WriteJSONLFile(*output, records); err != nil {
			slog.Error("Failed to write output", "file", *output, "error", err)
			os.Exit(1)
		}
		slog.Info("Persona dataset written", "file", *output, "records", len(records), "questions", len(qs))

	default:
		slog.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}
}
