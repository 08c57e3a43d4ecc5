// Package pipeline coordinates the batch document flow: plan chunks, submit
// each chunk as an external batch job, poll each job to a terminal state via
// resume-after requeues, fan completed jobs out into per-document records,
// and give each record to the validator, the persistence writer and the
// failure router. Every chunk and every individual result is its own
// schedulable unit; nothing mutates shared state after the split.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/job"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/chunk"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/failure"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/persist"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/poll"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/split"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/submit"
	"github.com/joseph-ayodele/docpipeline/internal/pipeline/validate"
	"github.com/joseph-ayodele/docpipeline/internal/sched"
)

// Summary accumulates counters across all units of one Run.
type Summary struct {
	mu sync.Mutex

	Batches        int
	SubmitFailures int
	FailedJobs     int
	Results        int
	Valid          int
	Partial        int
	Invalid        int
	WriteFailures  int
	LedgerEntries  int
}

func (s *Summary) add(fn func(*Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

type Pipeline struct {
	Logger    *slog.Logger
	Submitter *submit.Submitter
	Poller    *poll.Controller
	Splitter  *split.Splitter
	Validator *validate.Validator
	Writer    *persist.Writer
	Router    *failure.Router
	Queue     *sched.Queue

	ChunkSize int
	Prompt    string
}

// Run processes the ordered document list to completion and returns the
// summary. A fatal error in one batch (rejected submission, malformed result
// file) abandons that batch only; sibling batches and sibling items are
// unaffected.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Summary, error) {
	chunks, err := chunk.Plan(paths, p.ChunkSize)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("pipeline.planned", "documents", len(paths), "chunks", len(chunks), "chunk_size", p.ChunkSize)

	summary := &Summary{}
	var wg sync.WaitGroup

	for _, c := range chunks {
		c := c
		wg.Add(1)
		p.Queue.Submit(func(taskCtx context.Context) {
			p.runBatch(taskCtx, c, summary, &wg)
		})
	}

	wg.Wait()
	return summary, nil
}

// runBatch owns one chunk's unit of work from submission until every fanned
// out item has finished. The WaitGroup entry is held across poll requeues and
// handed down to item tasks.
func (p *Pipeline) runBatch(ctx context.Context, chunkPaths []string, summary *Summary, wg *sync.WaitGroup) {
	summary.add(func(s *Summary) { s.Batches++ })

	bj, err := p.Submitter.Submit(ctx, chunkPaths, p.Prompt)
	if err != nil {
		// Fatal for this batch; submission is never auto-retried.
		p.Logger.Error("pipeline.submit_failed", "files", len(chunkPaths), "error", err)
		summary.add(func(s *Summary) { s.SubmitFailures++ })
		wg.Done()
		return
	}

	p.scheduleCheck(bj, 0, summary, wg)
}

// scheduleCheck enqueues one poll invocation. Only the job handle travels in
// the continuation; the controller reconstructs everything else per check.
func (p *Pipeline) scheduleCheck(bj job.BatchJob, delay time.Duration, summary *Summary, wg *sync.WaitGroup) {
	p.Queue.SubmitAfter(delay, func(taskCtx context.Context) {
		outcome, err := p.Poller.Check(taskCtx, bj)
		if err != nil {
			p.Logger.Error("pipeline.poll_fatal", "task_id", bj.TaskID, "error", err)
			summary.add(func(s *Summary) { s.FailedJobs++ })
			wg.Done()
			return
		}

		if !outcome.Done() {
			p.scheduleCheck(outcome.Resume.Job, outcome.Resume.Delay, summary, wg)
			return
		}

		p.handleTerminal(bj, *outcome.Result, summary, wg)
	})
}

func (p *Pipeline) handleTerminal(bj job.BatchJob, result job.TaskResult, summary *Summary, wg *sync.WaitGroup) {
	defer wg.Done()

	if result.Status != constants.JobStatusCompleted {
		p.Logger.Error("pipeline.job_failed", "task_id", bj.TaskID, "error", result.Error)
		summary.add(func(s *Summary) { s.FailedJobs++ })
		return
	}

	bj.Status = constants.JobStatusCompleted
	items := p.Splitter.Split(result, bj)
	for _, item := range items {
		item := item
		wg.Add(1)
		p.Queue.Submit(func(taskCtx context.Context) {
			defer wg.Done()
			p.processItem(taskCtx, item, summary)
		})
	}
}

// processItem validates, persists and failure-routes one individual result.
func (p *Pipeline) processItem(ctx context.Context, item job.IndividualResult, summary *Summary) {
	rec := p.Validator.Validate(item)

	summary.add(func(s *Summary) {
		s.Results++
		switch rec.ValidationStatus {
		case constants.ValidationValid:
			s.Valid++
		case constants.ValidationPartial:
			s.Partial++
		case constants.ValidationInvalid:
			s.Invalid++
		}
	})

	if outcome := p.Writer.Write(ctx, rec, persist.ModeInsert); outcome == persist.WriteFailed {
		summary.add(func(s *Summary) { s.WriteFailures++ })
	}

	entry, _, err := p.Router.Route(rec)
	if err != nil {
		p.Logger.Error("pipeline.route_failed", "task_id", rec.TaskID, "result_index", rec.ResultIndex, "error", err)
		return
	}
	if entry != nil {
		summary.add(func(s *Summary) { s.LedgerEntries++ })
	}
}
