// Package submit turns one chunk of document paths into one external batch
// job: it extracts text per file, builds one generation request per file, and
// submits them all in a single batch call.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/common"
	"github.com/joseph-ayodele/docpipeline/internal/gemini"
	"github.com/joseph-ayodele/docpipeline/internal/job"
)

// ContentReader is the extractor capability the submitter depends on.
type ContentReader interface {
	ReadFile(path string) (string, error)
}

// BatchCreator is the one extraction-service call the submitter makes.
type BatchCreator interface {
	CreateBatch(ctx context.Context, displayName string, reqs []gemini.Request) (*gemini.Batch, error)
}

type Submitter struct {
	Logger *slog.Logger
	Reader ContentReader
	Client BatchCreator
}

func NewSubmitter(logger *slog.Logger, reader ContentReader, client BatchCreator) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{Logger: logger, Reader: reader, Client: client}
}

// Submit extracts each file in the chunk and submits one batch job covering
// all of them. A file that cannot be read does not abort the batch: its
// content is replaced with a diagnostic marker and processing continues.
// A rejected submission is returned as an error and is never retried here;
// retrying re-submits the whole batch, so that decision belongs to the caller.
func (s *Submitter) Submit(ctx context.Context, chunk []string, prompt string) (job.BatchJob, error) {
	taskID := uuid.New().String()

	reqs := make([]gemini.Request, 0, len(chunk))
	for _, path := range chunk {
		content, err := s.Reader.ReadFile(path)
		if err != nil {
			s.Logger.Error("submit.extract_failed", "task_id", taskID, "path", path, "error", err)
			content = fmt.Sprintf("[ERROR: Failed to read file - %v]", err)
		}
		reqs = append(reqs, gemini.Request{
			Contents: []gemini.Content{{
				Role:  "user",
				Parts: []gemini.Part{{Text: prompt + "\n\nDocument content:\n" + content}},
			}},
		})
	}

	s.Logger.Info("submit.batch_create", "task_id", taskID, "files", len(chunk))

	batch, err := s.Client.CreateBatch(ctx, "batch_job_"+taskID, reqs)
	if err != nil {
		return job.BatchJob{}, fmt.Errorf("submit batch %s: %w: %v", taskID, common.ErrSubmission, err)
	}

	bj := job.BatchJob{
		TaskID:        taskID,
		ExternalJobID: batch.Name,
		Status:        constants.JobStatusSubmitted,
		FilePaths:     append([]string(nil), chunk...),
		FileCount:     len(chunk),
		CreatedAt:     time.Now().UTC(),
	}

	s.Logger.Info("submit.batch_created",
		"task_id", taskID,
		"external_job_id", bj.ExternalJobID,
		"files", bj.FileCount,
	)
	return bj, nil
}
