package constants

// JobStatus is the canonical lifecycle status for a batch job.
type JobStatus string

// Stable values (these exact strings appear in stored records).
const (
	JobStatusSubmitted  JobStatus = "submitted"  // batch accepted by the extraction service
	JobStatusPending    JobStatus = "pending"    // queued on the service side
	JobStatusProcessing JobStatus = "processing" // running (or cancelling) on the service side
	JobStatusCompleted  JobStatus = "completed"  // terminal success
	JobStatusFailed     JobStatus = "failed"     // terminal failure
)

// Terminal reports whether a status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ValidationStatus classifies a single extracted result.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "valid"
	ValidationPartial ValidationStatus = "partial"
	ValidationInvalid ValidationStatus = "invalid"
)

// FailureReason is the deterministic code written to the retry ledger.
type FailureReason string

const (
	ReasonSchemaValidationFailed FailureReason = "schema_validation_failed"
	ReasonMissingTitle           FailureReason = "missing_title"
	ReasonMissingContent         FailureReason = "missing_content"
	ReasonContentTooShort        FailureReason = "content_too_short"
	ReasonValidationFailed       FailureReason = "validation_failed"
	ReasonUnknownFailure         FailureReason = "unknown_failure"
)

// MinContentLength is the heuristic floor below which extracted content is
// considered partial.
const MinContentLength = 10
