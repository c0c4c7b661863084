package main

import (
	"bytes"
	"flag"
	"log/slog"
	"os"

	"github.com/aigoflow/training-service/internal/config"
	"github.com/aigoflow/training-service/internal/dataset"
	"github.com/aigoflow/training-service/internal/hub"
)

// extract filters raw generator output to clean question/solutions
// JSONL, splits off a held-out test set, and optionally pushes both
// splits to a dataset hub repo.
func main() {
	var (
		envFile  = flag.String("env", "", "Optional .env file to load")
		input    = flag.String("input", "data.txt", "Raw generator output")
		output   = flag.String("output", "dataset.jsonl", "Clean JSONL output")
		testSize = flag.Int("test-size", 204, "Held-out test record count")
		seed     = flag.Int64("seed", 42, "Shuffle seed for the split")
		push     = flag.String("push", "", "Hub dataset repo to push to, e.g. org/physics-grpo")
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

	in, err := os.Open(*input)
	if err != nil {
		slog.Error("Failed to open input", "file", *input, "error", err)
		os.Exit(1)
	}
	records, err := dataset.Extract(in)
	in.Close()
	if err != nil {
		slog.Error("Extraction failed", "file", *input, "error", err)
		os.Exit(1)
	}

	if err := dataset.WriteJSONLFile(*output, records); err != nil {
		slog.Error("Failed to write output", "file", *output, "error", err)
		os.Exit(1)
	}
	slog.Info("Clean dataset written", "file", *output, "records", len(records))

	train, test, err := dataset.Split(records, *testSize, *seed)
	if err != nil {
		slog.Error("Split failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Dataset split", "train", len(train), "test", len(test), "seed", *seed)

	if *push == "" {
		return
	}

	client := hub.NewClient(cfg.HubURL, cfg.HubToken)
	for name, split := range map[string][]dataset.QARecord{
		"train.jsonl": train,
		"test.jsonl":  test,
	} {
		var buf bytes.Buffer
		if err := dataset.WriteJSONL(&buf, split); err != nil {
			slog.Error("Failed to encode split", "split", name, "error", err)
			os.Exit(1)
		}
		if err := client.PushDataset(*push, name, buf.Bytes()); err != nil {
			slog.Error("Hub push failed", "repo", *push, "split", name, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Dataset pushed", "repo", *push)
}
