// Package failure routes non-valid records to the append-only retry ledger:
// one CSV row per failure event under the failures directory.
package failure

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/job"
)

var ledgerHeader = []string{"file_path", "failure_reason", "task_id", "timestamp"}

type Router struct {
	Logger *slog.Logger
	Dir    string
}

func NewRouter(logger *slog.Logger, dir string) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "failures"
	}
	return &Router{Logger: logger, Dir: dir}
}

// Reason derives the deterministic failure code for a record. Partial records
// are checked in priority order: missing_title, then missing_content, then
// content_too_short.
func Reason(rec job.ValidatedRecord) constants.FailureReason {
	switch rec.ValidationStatus {
	case constants.ValidationInvalid:
		return constants.ReasonSchemaValidationFailed
	case constants.ValidationPartial:
		title, _ := rec.ExtractedData["title"].(string)
		content, _ := rec.ExtractedData["content"].(string)
		switch {
		case title == "":
			return constants.ReasonMissingTitle
		case content == "":
			return constants.ReasonMissingContent
		case len(strings.TrimSpace(content)) < constants.MinContentLength:
			return constants.ReasonContentTooShort
		default:
			return constants.ReasonValidationFailed
		}
	default:
		return constants.ReasonUnknownFailure
	}
}

// Route appends one ledger entry for a non-valid record and returns it. Valid
// records are an explicit no-op. Ledger files are opened append-only; an
// existing file is extended, never overwritten.
func (r *Router) Route(rec job.ValidatedRecord) (*job.RetryLedgerEntry, string, error) {
	if rec.ValidationStatus == constants.ValidationValid {
		return nil, "", nil
	}

	entry := job.RetryLedgerEntry{
		FilePath:      rec.FilePath,
		FailureReason: Reason(rec),
		TaskID:        rec.TaskID,
		Timestamp:     time.Now().UTC(),
	}

	path, err := r.append(entry)
	if err != nil {
		return nil, "", fmt.Errorf("append retry ledger: %w", err)
	}

	r.Logger.Info("failure.routed",
		"task_id", entry.TaskID,
		"file_path", entry.FilePath,
		"reason", entry.FailureReason,
		"ledger", path,
	)
	return &entry, path, nil
}

func (r *Router) append(entry job.RetryLedgerEntry) (string, error) {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("failures_%s_%s.csv", entry.TaskID, entry.Timestamp.Format("20060102_150405"))
	path := filepath.Join(r.Dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(ledgerHeader); err != nil {
			return "", err
		}
	}
	if err := w.Write([]string{
		entry.FilePath,
		string(entry.FailureReason),
		entry.TaskID,
		entry.Timestamp.Format(time.RFC3339),
	}); err != nil {
		return "", err
	}
	w.Flush()
	return path, w.Error()
}
