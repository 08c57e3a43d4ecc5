// Package poll drives a submitted batch job to a terminal state. Check is the
// whole state machine: it queries the service once and either returns a
// terminal TaskResult or a resume-after continuation for the hosting
// scheduler. The controller is stateless across suspensions; everything a
// re-invocation needs travels inside the continuation.
//
// Known conflation, preserved on purpose: a transport error on the status
// query and a service-side "cancelled" both map to the business Failed state,
// and there is no maximum poll-attempt bound. See DESIGN.md.
package poll

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/common"
	"github.com/joseph-ayodele/docpipeline/internal/gemini"
	"github.com/joseph-ayodele/docpipeline/internal/job"
)

// DefaultInterval is the fixed delay requested between status checks.
const DefaultInterval = 30 * time.Second

// StatusClient is the slice of the extraction service the controller uses.
type StatusClient interface {
	GetBatch(ctx context.Context, name string) (*gemini.Batch, error)
	DownloadFile(ctx context.Context, name string) ([]byte, error)
}

// Continuation is the explicit suspension value: re-invoke Check with Job
// after Delay. No other state persists between invocations.
type Continuation struct {
	Job   job.BatchJob
	Delay time.Duration
}

// Outcome is either terminal (Result set) or a suspension (Resume set).
type Outcome struct {
	Result *job.TaskResult
	Resume *Continuation
}

// Done reports whether the job reached a terminal state.
func (o Outcome) Done() bool { return o.Result != nil }

type Controller struct {
	Logger   *slog.Logger
	Client   StatusClient
	Interval time.Duration
}

func NewController(logger *slog.Logger, client StatusClient, interval time.Duration) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{Logger: logger, Client: client, Interval: interval}
}

// mapState translates service job states to pipeline statuses. Unknown states
// count as pending, matching the service's own forward-compatibility advice.
func mapState(state string) constants.JobStatus {
	switch state {
	case gemini.StatePending:
		return constants.JobStatusPending
	case gemini.StateRunning, gemini.StateCancelling:
		return constants.JobStatusProcessing
	case gemini.StateSucceeded:
		return constants.JobStatusCompleted
	case gemini.StateFailed, gemini.StateCancelled:
		return constants.JobStatusFailed
	default:
		return constants.JobStatusPending
	}
}

// Check performs one status query. It never blocks waiting for the job: a
// non-terminal state yields a Continuation carrying the (updated) job handle
// and the fixed resume delay. Calling Check again on an unchanged external
// state yields the same internal state and no duplicate terminal result.
func (c *Controller) Check(ctx context.Context, bj job.BatchJob) (Outcome, error) {
	batch, err := c.Client.GetBatch(ctx, bj.ExternalJobID)
	if err != nil {
		// Transport failure is conflated with business failure; documented
		// open question, kept as-is.
		c.Logger.Error("poll.status_error", "task_id", bj.TaskID, "external_job_id", bj.ExternalJobID, "error", err)
		return Outcome{Result: &job.TaskResult{
			TaskID: bj.TaskID,
			Status: constants.JobStatusFailed,
			Error:  fmt.Sprintf("status query failed: %v", err),
		}}, nil
	}

	status := mapState(batch.State)
	c.Logger.Info("poll.check",
		"task_id", bj.TaskID,
		"external_job_id", bj.ExternalJobID,
		"service_state", batch.State,
		"status", status,
	)

	switch status {
	case constants.JobStatusCompleted:
		result, err := c.fetchResults(ctx, bj, batch)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Result: result}, nil

	case constants.JobStatusFailed:
		return Outcome{Result: &job.TaskResult{
			TaskID: bj.TaskID,
			Status: constants.JobStatusFailed,
			Error:  fmt.Sprintf("batch job failed (service state %s)", batch.State),
		}}, nil

	default:
		next := bj
		next.Status = status
		return Outcome{Resume: &Continuation{Job: next, Delay: c.Interval}}, nil
	}
}

// fetchResults retrieves a completed job's output: inline responses when
// present, otherwise the downloadable JSONL result file. Neither being
// present is a Failed result with a diagnostic, not an error.
func (c *Controller) fetchResults(ctx context.Context, bj job.BatchJob, batch *gemini.Batch) (*job.TaskResult, error) {
	switch {
	case batch.Dest != nil && len(batch.Dest.InlinedResponses) > 0:
		results := make([]job.ResponseResult, 0, len(batch.Dest.InlinedResponses))
		for i, inl := range batch.Dest.InlinedResponses {
			results = append(results, toResult(i, inl.Response))
		}
		c.Logger.Info("poll.results_inline", "task_id", bj.TaskID, "results", len(results))
		return &job.TaskResult{TaskID: bj.TaskID, Status: constants.JobStatusCompleted, Results: results}, nil

	case batch.Dest != nil && batch.Dest.FileName != "":
		raw, err := c.Client.DownloadFile(ctx, batch.Dest.FileName)
		if err != nil {
			c.Logger.Error("poll.download_error", "task_id", bj.TaskID, "file", batch.Dest.FileName, "error", err)
			return &job.TaskResult{
				TaskID: bj.TaskID,
				Status: constants.JobStatusFailed,
				Error:  fmt.Sprintf("result file download failed: %v", err),
			}, nil
		}
		results, err := parseJSONL(raw)
		if err != nil {
			return nil, fmt.Errorf("task %s result file: %w", bj.TaskID, err)
		}
		c.Logger.Info("poll.results_file", "task_id", bj.TaskID, "file", batch.Dest.FileName, "results", len(results))
		return &job.TaskResult{TaskID: bj.TaskID, Status: constants.JobStatusCompleted, Results: results}, nil

	default:
		c.Logger.Error("poll.no_results", "task_id", bj.TaskID, "external_job_id", bj.ExternalJobID)
		return &job.TaskResult{
			TaskID: bj.TaskID,
			Status: constants.JobStatusFailed,
			Error:  "no output file or inlined responses available",
		}, nil
	}
}

// parseJSONL decodes a newline-delimited result file. An unparseable line is
// malformed input: fatal for this batch, propagated to the caller.
func parseJSONL(raw []byte) ([]job.ResponseResult, error) {
	var results []job.ResponseResult
	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var wrapper struct {
			Response *gemini.Response `json:"response"`
		}
		if err := json.Unmarshal([]byte(line), &wrapper); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", i+1, common.ErrMalformedInput, err)
		}
		resp := wrapper.Response
		if resp == nil {
			// Some result files carry the response at the top level.
			var flat gemini.Response
			if err := json.Unmarshal([]byte(line), &flat); err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", i+1, common.ErrMalformedInput, err)
			}
			resp = &flat
		}
		results = append(results, toResult(len(results), resp))
	}
	return results, nil
}

func toResult(index int, resp *gemini.Response) job.ResponseResult {
	if resp == nil {
		return job.ResponseResult{ResponseID: fmt.Sprintf("response_%d", index), Content: ""}
	}
	content := resp.Text()
	if content == "" && len(resp.Candidates) == 0 {
		content = "No content"
	}
	r := job.ResponseResult{
		ResponseID:   resp.ResponseID,
		ModelVersion: resp.ModelVersion,
		Content:      content,
	}
	if r.ResponseID == "" {
		r.ResponseID = fmt.Sprintf("response_%d", index)
	}
	if u := resp.UsageMetadata; u != nil {
		r.Usage = job.UsageMetadata{
			PromptTokenCount:        u.PromptTokenCount,
			CandidatesTokenCount:    u.CandidatesTokenCount,
			TotalTokenCount:         u.TotalTokenCount,
			CachedContentTokenCount: u.CachedContentTokenCount,
		}
	}
	return r
}
