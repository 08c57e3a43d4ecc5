package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Service-side batch job states. Cancelling counts as still-running and
// cancelled as failed when mapped to pipeline statuses.
const (
	StatePending    = "JOB_STATE_PENDING"
	StateRunning    = "JOB_STATE_RUNNING"
	StateSucceeded  = "JOB_STATE_SUCCEEDED"
	StateFailed     = "JOB_STATE_FAILED"
	StateCancelling = "JOB_STATE_CANCELLING"
	StateCancelled  = "JOB_STATE_CANCELLED"
)

// Part, Content and Request mirror the generateContent wire format.
type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Request struct {
	Contents []Content `json:"contents"`
}

// Usage mirrors usageMetadata on a response.
type Usage struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	TotalTokenCount         int `json:"totalTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount"`
}

type Candidate struct {
	Content Content `json:"content"`
}

// Response is a single model response, inline or from a result file line.
type Response struct {
	ResponseID    string      `json:"responseId"`
	ModelVersion  string      `json:"modelVersion"`
	Candidates    []Candidate `json:"candidates"`
	UsageMetadata *Usage      `json:"usageMetadata,omitempty"`
}

// Text returns the first candidate's concatenated text parts, or empty when
// the model produced no candidates.
func (r *Response) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}

type InlinedResponse struct {
	Response *Response `json:"response,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Dest describes where a completed batch delivered its output: inline
// responses embedded in the job, or a downloadable result file.
type Dest struct {
	InlinedResponses []InlinedResponse `json:"inlinedResponses,omitempty"`
	FileName         string            `json:"fileName,omitempty"`
}

// Batch is the service-side job resource.
type Batch struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	State       string `json:"state"`
	Dest        *Dest  `json:"dest,omitempty"`
}

type createBatchRequest struct {
	Batch struct {
		DisplayName string `json:"displayName"`
		InputConfig struct {
			Requests struct {
				Requests []inlineRequest `json:"requests"`
			} `json:"requests"`
		} `json:"inputConfig"`
	} `json:"batch"`
}

type inlineRequest struct {
	Request Request `json:"request"`
}

// CreateBatch submits the requests as one batch job and returns the created
// job resource. One call creates billable work; callers must not retry it
// blindly.
func (c *Client) CreateBatch(ctx context.Context, displayName string, reqs []Request) (*Batch, error) {
	var body createBatchRequest
	body.Batch.DisplayName = displayName
	inline := make([]inlineRequest, 0, len(reqs))
	for _, r := range reqs {
		inline = append(inline, inlineRequest{Request: r})
	}
	body.Batch.InputConfig.Requests.Requests = inline

	c.log.Info("gemini.batch.create", "display_name", displayName, "requests", len(reqs), "model", c.cfg.Model)

	raw, err := c.do(ctx, http.MethodPost, c.url(c.cfg.Model+":batchGenerateContent"), body)
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	var b Batch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	c.log.Info("gemini.batch.created", "name", b.Name, "state", b.State)
	return &b, nil
}

// GetBatch fetches the current state of a batch job by its resource name
// ("batches/...").
func (c *Client) GetBatch(ctx context.Context, name string) (*Batch, error) {
	raw, err := c.do(ctx, http.MethodGet, c.url(name), nil)
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", name, err)
	}
	var b Batch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", name, err)
	}
	return &b, nil
}

// DownloadFile retrieves the raw bytes of a result file ("files/...").
func (c *Client) DownloadFile(ctx context.Context, name string) ([]byte, error) {
	raw, err := c.do(ctx, http.MethodGet, c.url(name+":download?alt=media"), nil)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", name, err)
	}
	return raw, nil
}
