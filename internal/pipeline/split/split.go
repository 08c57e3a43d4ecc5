// Package split fans a completed batch's N results into N independent
// per-document records for parallel validation.
package split

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/docpipeline/internal/job"
)

type Splitter struct {
	Logger *slog.Logger
}

func NewSplitter(logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{Logger: logger}
}

// Split turns each response in the task result into an IndividualResult.
// Zero results is an explicit no-op yielding an empty slice. Every emitted
// record carries its own copy of the batch metadata; processing one record
// can never affect a sibling.
func (s *Splitter) Split(tr job.TaskResult, bj job.BatchJob) []job.IndividualResult {
	if len(tr.Results) == 0 {
		s.Logger.Warn("split.no_results", "task_id", tr.TaskID)
		return []job.IndividualResult{}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	out := make([]job.IndividualResult, 0, len(tr.Results))
	for i, res := range tr.Results {
		out = append(out, job.IndividualResult{
			TaskID:         tr.TaskID,
			Status:         string(tr.Status),
			ResultIndex:    i,
			ResponseID:     res.ResponseID,
			ModelVersion:   res.ModelVersion,
			Usage:          res.Usage,
			FilePath:       attributeFilePath(bj, i, res.ResponseID),
			ExtractedData:  extractData(res),
			BatchInfo:      bj.Clone(),
			SplitTimestamp: now,
		})
	}

	s.Logger.Info("split.ok", "task_id", tr.TaskID, "results", len(out))
	return out
}

// extractData parses the response payload as JSON. A non-JSON payload is
// wrapped under a content field with a synthesized title; an empty payload
// becomes an explicit sentinel record rather than a failure.
func extractData(res job.ResponseResult) map[string]any {
	if res.Content == "" {
		return map[string]any{
			"title":   "Empty Response",
			"content": "No content received",
			"metadata": map[string]any{
				"response_id":   res.ResponseID,
				"model_version": res.ModelVersion,
			},
		}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(res.Content), &parsed); err == nil {
		return parsed
	}
	return map[string]any{
		"title":   "Document",
		"content": res.Content,
		"metadata": map[string]any{
			"response_id":   res.ResponseID,
			"model_version": res.ModelVersion,
		},
	}
}

// attributeFilePath recovers the source path for result i. The ordered path
// list in the batch metadata is authoritative when the index is in range; the
// response_id substring heuristic is kept as a best-effort fallback and must
// not be treated as an identity key.
func attributeFilePath(bj job.BatchJob, i int, responseID string) string {
	if i >= 0 && i < len(bj.FilePaths) {
		return bj.FilePaths[i]
	}
	if strings.Contains(responseID, "_") {
		return responseID
	}
	return ""
}
