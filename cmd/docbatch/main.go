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
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/poll"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/split"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/submit"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/validate"
	"github.com/joseph-ayodele/docpipeline/internal/repository"
	"github.com/joseph-ayodele/docpipeline/internal/sched"
)

func main() {
	var (
		manifest  = flag.String("input", "", "CSV or XLSX manifest of document paths (required)")
		prompt    = flag.String("prompt", "", "extraction prompt (overrides PROMPT env)")
		chunkSize = flag.Int("chunk-size", 0, "documents per batch job (overrides CHUNK_SIZE env)")
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
	if *chunkSize > 0 {
		cfg.Pipeline.ChunkSize = *chunkSize
	}
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

	client := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	}, logger)

	validator, err := validate.NewValidator(logger)
	if err != nil {
		logger.Error("failed to build validator", "error", err)
		os.Exit(1)
	}

	queue := sched.New(logger, sched.WithWorkers(cfg.Pipeline.Workers))
	defer queue.Shutdown(ctx)

	p := &pipeline.Pipeline{
		Logger:    logger,
		Submitter: submit.NewSubmitter(logger, extract.NewRegistry(logger), client),
		Poller:    poll.NewController(logger, client, cfg.Pipeline.PollInterval),
		Splitter:  split.NewSplitter(logger),
		Validator: validator,
		Writer:    persist.NewWriter(logger, repo),
		Router:    failure.NewRouter(logger, cfg.Pipeline.FailuresDir),
		Queue:     queue,
		ChunkSize: cfg.Pipeline.ChunkSize,
		Prompt:    *prompt,
	}

	summary, err := p.Run(ctx, paths)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"batches", summary.Batches,
		"submit_failures", summary.SubmitFailures,
		"failed_jobs", summary.FailedJobs,
		"results", summary.Results,
		"valid", summary.Valid,
		"partial", summary.Partial,
		"invalid", summary.Invalid,
		"write_failures", summary.WriteFailures,
		"ledger_entries", summary.LedgerEntries,
	)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Batches: %d (submit failures: %d, failed jobs: %d)\n", summary.Batches, summary.SubmitFailures, summary.FailedJobs)
	fmt.Printf("- Results: %d (valid: %d, partial: %d, invalid: %d)\n", summary.Results, summary.Valid, summary.Partial, summary.Invalid)
	fmt.Printf("- Write failures: %d, ledger entries: %d\n", summary.WriteFailures, summary.LedgerEntries)
}
