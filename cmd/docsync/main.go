package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docpipeline/internal/common"
	"github.com/joseph-ayodele/docpipeline/internal/extract"
	"github.com/joseph-ayodele/docpipeline/internal/gemini"
	"github.com/joseph-ayodele/docpipeline/internal/inputlist"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/failure"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/persist"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/validate"
	"github.com/joseph-ayodele/docpipeline/internal/repository"
)

func main() {
	var (
		manifest = flag.String("input", "", "CSV or XLSX manifest of document paths (required)")
		prompt   = flag.String("prompt", "", "extraction prompt (overrides PROMPT env)")
	)
	flag.Parse()

	if *manifest == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *prompt == "" {
		*prompt = os.Getenv("PROMPT")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	paths, err := inputlist.ReadManifest(*manifest)
	if err != nil {
		logger.Error("failed to read manifest", "manifest", *manifest, "error", err)
		os.Exit(1)
	}
	logger.Info("manifest loaded", "manifest", *manifest, "documents", len(paths))

	repo, cleanup, err := repository.Open(ctx, cfg.Database.URI, cfg.Database.Database, cfg.Database.Collection, cfg.Database.DialTimeout, logger)
	if err != nil {
		logger.Error("failed to connect to document store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	realtime, err := gemini.NewRealtime(ctx, gemini.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	}, logger)
	if err != nil {
		logger.Error("failed to create extraction client", "error", err)
		os.Exit(1)
	}
	defer realtime.Close()

	validator, err := validate.NewValidator(logger)
	if err != nil {
		logger.Error("failed to build validator", "error", err)
		os.Exit(1)
	}

	proc := &pipeline.SingleProcessor{
		Logger:    logger,
		Reader:    extract.NewRegistry(logger),
		Client:    realtime,
		Validator: validator,
		Writer:    persist.NewWriter(logger, repo),
		Router:    failure.NewRouter(logger, cfg.Pipeline.FailuresDir),
	}

	processed, failures := 0, 0
	for _, path := range paths {
		rec, outcome, err := proc.ProcessDocument(ctx, path, *prompt)
		if err != nil {
			logger.Error("failed to process document", "path", path, "error", err)
			failures++
			continue
		}
		logger.Info("document processed",
			"path", path,
			"task_id", rec.TaskID,
			"validation_status", rec.ValidationStatus,
			"write_outcome", outcome,
		)
		processed++
	}

	fmt.Printf("Sync processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
}
