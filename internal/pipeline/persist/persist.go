// Package persist writes validated records to the document store. A write
// failure is reported as an outcome status, never as a crash: siblings keep
// going and the caller decides what to do with the failure.
package persist

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/docpipeline/internal/job"
	"github.com/joseph-ayodele/docpipeline/internal/repository"
)

// WriteOutcome is the status value surfaced to the caller.
type WriteOutcome string

const (
	WriteSuccess WriteOutcome = "success"
	WriteFailed  WriteOutcome = "failed"
)

// Mode selects the persistence keying for a path through the system.
type Mode int

const (
	// ModeInsert stores each record independently; batch results never
	// collide across result_index.
	ModeInsert Mode = iota
	// ModeUpsert keys by task_id so retries overwrite instead of duplicate.
	ModeUpsert
)

type Writer struct {
	Logger *slog.Logger
	Repo   repository.DocumentRepository
}

func NewWriter(logger *slog.Logger, repo repository.DocumentRepository) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Logger: logger, Repo: repo}
}

// Write persists one record and reports the outcome. Errors are caught here;
// they never abort sibling writes.
func (w *Writer) Write(ctx context.Context, rec job.ValidatedRecord, mode Mode) WriteOutcome {
	var err error
	switch mode {
	case ModeUpsert:
		err = w.Repo.Upsert(ctx, rec)
	default:
		err = w.Repo.Insert(ctx, rec)
	}
	if err != nil {
		w.Logger.Error("persist.write_failed",
			"task_id", rec.TaskID,
			"result_index", rec.ResultIndex,
			"file_path", rec.FilePath,
			"error", err,
		)
		return WriteFailed
	}
	return WriteSuccess
}
