package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/job"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/failure"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/persist"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/submit"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/validate"
)

// RealtimeClient is the synchronous extraction call the single path uses
// instead of batch submission and polling.
type RealtimeClient interface {
	Generate(ctx context.Context, prompt string) (string, job.UsageMetadata, error)
}

// SingleProcessor is the simplified single-document variant: batch size one,
// synchronous extraction, no splitter. It satisfies the same validation and
// persistence contracts as the batch path, with upsert persistence so retries
// overwrite rather than duplicate.
type SingleProcessor struct {
	Logger    *slog.Logger
	Reader    submit.ContentReader
	Client    RealtimeClient
	Validator *validate.Validator
	Writer    *persist.Writer
	Router    *failure.Router
}

// ProcessDocument extracts, validates, persists and failure-routes one
// document. The returned record and write outcome describe what happened;
// only extraction-call failures are errors.
func (s *SingleProcessor) ProcessDocument(ctx context.Context, path, prompt string) (job.ValidatedRecord, persist.WriteOutcome, error) {
	taskID := uuid.New().String()

	content, err := s.Reader.ReadFile(path)
	if err != nil {
		s.Logger.Error("single.extract_failed", "task_id", taskID, "path", path, "error", err)
		content = fmt.Sprintf("[ERROR: Failed to read file - %v]", err)
	}

	s.Logger.Info("single.generate", "task_id", taskID, "path", path)
	text, usage, err := s.Client.Generate(ctx, prompt+"\n\nDocument content:\n"+content)
	if err != nil {
		return job.ValidatedRecord{}, persist.WriteFailed, fmt.Errorf("process %s: %w", path, err)
	}

	item := job.IndividualResult{
		TaskID:        taskID,
		Status:        string(constants.JobStatusCompleted),
		ResultIndex:   0,
		ResponseID:    taskID,
		Usage:         usage,
		FilePath:      path,
		ExtractedData: parseExtracted(text, taskID),
		BatchInfo: job.BatchJob{
			TaskID:    taskID,
			Status:    constants.JobStatusCompleted,
			FilePaths: []string{path},
			FileCount: 1,
			CreatedAt: time.Now().UTC(),
		},
		SplitTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	rec := s.Validator.Validate(item)
	outcome := s.Writer.Write(ctx, rec, persist.ModeUpsert)
	if _, _, err := s.Router.Route(rec); err != nil {
		s.Logger.Error("single.route_failed", "task_id", taskID, "error", err)
	}
	return rec, outcome, nil
}

// parseExtracted mirrors the splitter's payload handling so both paths
// produce equivalent records for the same extracted data.
func parseExtracted(text, responseID string) map[string]any {
	if text == "" {
		return map[string]any{
			"title":    "Empty Response",
			"content":  "No content received",
			"metadata": map[string]any{"response_id": responseID},
		}
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed
	}
	return map[string]any{
		"title":    "Document",
		"content":  text,
		"metadata": map[string]any{"response_id": responseID},
	}
}
