// Package job defines the records that flow between pipeline stages: the
// batch job handle, the raw task result fetched from the extraction service,
// the per-document result produced by the splitter, and the validated record
// the persistence and failure-routing stages consume.
package job

import (
	"time"

	"github.com/joseph-ayodele/docpipeline/constants"
)

// BatchJob is the handle for one external batch submission. It is created by
// the submitter, its Status is advanced only by the poll controller, and it is
// immutable once terminal.
type BatchJob struct {
	TaskID        string              `json:"task_id"`
	ExternalJobID string              `json:"external_job_id"`
	Status        constants.JobStatus `json:"status"`
	FilePaths     []string            `json:"file_paths"`
	FileCount     int                 `json:"file_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Clone returns a value copy with its own FilePaths backing array, so that
// per-item fan-out never shares mutable state between siblings.
func (b BatchJob) Clone() BatchJob {
	c := b
	c.FilePaths = append([]string(nil), b.FilePaths...)
	return c
}

// UsageMetadata carries the token accounting reported by the service.
type UsageMetadata struct {
	PromptTokenCount        int `json:"prompt_token_count"`
	CandidatesTokenCount    int `json:"candidates_token_count"`
	TotalTokenCount         int `json:"total_token_count"`
	CachedContentTokenCount int `json:"cached_content_token_count"`
}

// ResponseResult is one raw model response inside a completed batch.
type ResponseResult struct {
	ResponseID   string        `json:"response_id"`
	ModelVersion string        `json:"model_version"`
	Content      string        `json:"content"`
	Usage        UsageMetadata `json:"usage_metadata"`
}

// TaskResult is the terminal outcome of polling one batch job.
type TaskResult struct {
	TaskID  string              `json:"task_id"`
	Status  constants.JobStatus `json:"status"`
	Error   string              `json:"error,omitempty"`
	Results []ResponseResult    `json:"results"`
}

// IndividualResult is one document's share of a completed batch. ResultIndex
// values for a batch form a contiguous 0..N-1 range. ExtractedData stays a
// generic map on purpose: the model may return anything, and classifying that
// anything is the validator's job, not the splitter's.
type IndividualResult struct {
	TaskID         string         `json:"task_id"`
	Status         string         `json:"status"`
	ResultIndex    int            `json:"result_index"`
	ResponseID     string         `json:"response_id"`
	ModelVersion   string         `json:"model_version"`
	Usage          UsageMetadata  `json:"usage_metadata"`
	FilePath       string         `json:"file_path"` // best-effort attribution, may be empty
	ExtractedData  map[string]any `json:"extracted_data"`
	BatchInfo      BatchJob       `json:"batch_info"`
	SplitTimestamp string         `json:"split_timestamp"`
}

// ValidatedRecord is an IndividualResult plus its classification. Produced
// exactly once per result; immutable afterwards.
type ValidatedRecord struct {
	IndividualResult

	ValidationStatus    constants.ValidationStatus `json:"validation_status"`
	ValidationError     string                     `json:"validation_error,omitempty"`
	ValidationTimestamp string                     `json:"validation_timestamp"`
}

// RetryLedgerEntry is one append-only row in the failure ledger.
type RetryLedgerEntry struct {
	FilePath      string                  `json:"file_path"`
	FailureReason constants.FailureReason `json:"failure_reason"`
	TaskID        string                  `json:"task_id"`
	Timestamp     time.Time               `json:"timestamp"`
}
