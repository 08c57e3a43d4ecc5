package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/docpipeline/internal/job"
)

// Realtime wraps the official SDK for the synchronous single-document path.
type Realtime struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *slog.Logger
}

func NewRealtime(ctx context.Context, cfg Config, logger *slog.Logger) (*Realtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(strings.TrimPrefix(cfg.Model, "models/"))
	return &Realtime{client: client, model: model, log: logger}, nil
}

// Generate sends one prompt and returns the response text and token usage.
// An empty candidate list is an error: the sync path has no sentinel-record
// stage to absorb it.
func (r *Realtime) Generate(ctx context.Context, prompt string) (string, job.UsageMetadata, error) {
	start := time.Now()

	resp, err := r.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		r.log.Error("gemini.realtime.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", job.UsageMetadata{}, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", job.UsageMetadata{}, fmt.Errorf("no response candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	var usage job.UsageMetadata
	if um := resp.UsageMetadata; um != nil {
		usage = job.UsageMetadata{
			PromptTokenCount:        int(um.PromptTokenCount),
			CandidatesTokenCount:    int(um.CandidatesTokenCount),
			TotalTokenCount:         int(um.TotalTokenCount),
			CachedContentTokenCount: int(um.CachedContentTokenCount),
		}
	}

	r.log.Info("gemini.realtime.ok",
		"total_tokens", usage.TotalTokenCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sb.String(), usage, nil
}

// Close releases the underlying SDK client.
func (r *Realtime) Close() error {
	return r.client.Close()
}
