// File: internal/usecase/ingestion_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/domain"
	"github.com/synapse-ai/cortex/internal/domain/model"
	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
	"github.com/synapse-ai/cortex/internal/infra/jobstore"
	"github.com/synapse-ai/cortex/internal/infra/metrics"
	"github.com/synapse-ai/cortex/internal/infra/worker"
)

// Minimum requirements for ingestion; sessions below them are skipped.
const (
	minMessages   = 1
	minTotalChars = 5
)

const (
	graphProcessingErrorCode = "GRAPH_PROCESSING_ERROR"
	episodeSourceDescription = "Chat conversation from Synapse AI Chat application"
)

type AcceptStatus string

const (
	AcceptStatusProcessing AcceptStatus = "processing"
	AcceptStatusSkipped    AcceptStatus = "skipped"
)

// AcceptResult is what a caller gets back immediately from Accept. A skipped
// session carries the current compilation; a processing one carries nothing
// but the job id it should poll.
type AcceptResult struct {
	JobID       string
	Status      AcceptStatus
	Compilation string
	Model       string
}

// PollResult is the state of a job as observed by one poll. Completed and
// failed results are delivered at most once; the entry is removed on the
// terminal read and later polls see ErrJobNotFound.
type PollResult struct {
	Status      model.JobStatus
	Compilation string
	Meta        *model.CompletionMeta
	Error       string
	Code        string
}

// IngestionUseCase orchestrates acceptance and asynchronous completion of
// ingestion requests.
type IngestionUseCase interface {
	Accept(ctx context.Context, req *model.IngestRequest) (*AcceptResult, error)
	Poll(ctx context.Context, jobID string) (*PollResult, error)
}

var _ IngestionUseCase = (*ingestionUC)(nil)

type ingestionUC struct {
	jobs      *jobstore.Store
	engine    adapter.ExtractionEngine
	hydration HydrationUseCase
	pool      *worker.Pool
	model     string
	log       *zerolog.Logger
}

func NewIngestionUseCase(
	jobs *jobstore.Store,
	engine adapter.ExtractionEngine,
	hydration HydrationUseCase,
	pool *worker.Pool,
	extractionModel string,
	log *zerolog.Logger,
) *ingestionUC {
	return &ingestionUC{
		jobs:      jobs,
		engine:    engine,
		hydration: hydration,
		pool:      pool,
		model:     extractionModel,
		log:       log,
	}
}

// Accept validates the session and either resolves it synchronously as a
// skip or registers a job and hands extraction to the background pool. It
// returns before any extraction work happens.
func (uc *ingestionUC) Accept(ctx context.Context, req *model.IngestRequest) (*AcceptResult, error) {
	if req.UserID == "" || req.SessionID == "" || req.JobID == "" {
		return nil, fmt.Errorf("%w: userId, sessionId and jobId are required", domain.ErrInvalidArgument)
	}

	if !shouldIngest(req.Messages) {
		uc.log.Info().
			Str("session_id", req.SessionID).
			Int("messages", len(req.Messages)).
			Msg("skipping ingestion: insufficient input")
		metrics.IncIngestSkipped()

		// Still hydrate so the caller gets existing knowledge. Read failures
		// propagate: this is the request path and has someone to report to.
		compilation, err := uc.hydration.BuildUserKnowledge(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		return &AcceptResult{
			JobID:       req.JobID,
			Status:      AcceptStatusSkipped,
			Compilation: compilation,
			Model:       uc.model,
		}, nil
	}

	if !uc.jobs.Create(req.JobID, req.UserID, req.SessionID) {
		// Duplicate submission of an in-flight job: report processing without
		// launching a second task.
		uc.log.Info().Str("job_id", req.JobID).Msg("duplicate ingest accept, job already in flight")
		return &AcceptResult{JobID: req.JobID, Status: AcceptStatusProcessing, Model: uc.model}, nil
	}

	task := func(taskCtx context.Context) error {
		uc.runExtraction(taskCtx, req)
		return nil
	}
	if err := uc.pool.Submit(task); err != nil {
		// The job is registered, so it must get its one extraction attempt
		// even when the pool is saturated.
		uc.log.Warn().Err(err).Str("job_id", req.JobID).Msg("worker pool saturated, running extraction detached")
		go func() {
			uc.runExtraction(context.Background(), req)
		}()
	}

	return &AcceptResult{JobID: req.JobID, Status: AcceptStatusProcessing, Model: uc.model}, nil
}

// Poll reports job state and delivers terminal results exactly once.
func (uc *ingestionUC) Poll(ctx context.Context, jobID string) (*PollResult, error) {
	job, ok := uc.jobs.Get(jobID)
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	switch job.Status {
	case model.JobStatusProcessing:
		return &PollResult{Status: model.JobStatusProcessing}, nil

	case model.JobStatusCompleted:
		// Deliberately built at poll time, not at extraction time, so the
		// compilation reflects graph state as of the poll.
		compilation, err := uc.hydration.BuildUserKnowledge(ctx, job.UserID)
		if err != nil {
			// Leave the entry in place; the caller can poll again.
			return nil, err
		}
		uc.jobs.Remove(jobID)
		return &PollResult{
			Status:      model.JobStatusCompleted,
			Compilation: compilation,
			Meta:        job.Completion,
		}, nil

	case model.JobStatusFailed:
		uc.jobs.Remove(jobID)
		return &PollResult{Status: model.JobStatusFailed, Error: job.Error, Code: job.Code}, nil

	default:
		return nil, fmt.Errorf("job %s in unknown status %q", jobID, job.Status)
	}
}

// runExtraction is the background task bound to one accepted job. Extraction
// is attempted exactly once; every failure path ends in jobs.Fail, nothing
// escapes to a caller (the accept request has already returned).
func (uc *ingestionUC) runExtraction(ctx context.Context, req *model.IngestRequest) {
	log := uc.log.With().Str("job_id", req.JobID).Str("session_id", req.SessionID).Logger()

	episodeName := "session_" + req.SessionID
	body := formatEpisodeBody(req.Messages)
	log.Info().Str("episode", episodeName).Str("user_id", req.UserID).Msg("adding episode")

	start := time.Now()
	result, err := uc.engine.AddEpisode(ctx, adapter.EpisodeInput{
		Name:              episodeName,
		Body:              body,
		Source:            adapter.EpisodeSourceMessage,
		SourceDescription: episodeSourceDescription,
		GroupID:           req.UserID,
		ReferenceTime:     time.UnixMilli(req.Metadata.SessionEndedAt).UTC(),
	})
	elapsed := time.Since(start)
	metrics.ObserveExtractionDuration(elapsed)

	if err != nil {
		log.Error().Err(err).Msg("graph extraction failed")
		metrics.IncIngestJob(string(model.JobStatusFailed))
		uc.jobs.Fail(req.JobID, err.Error(), graphProcessingErrorCode)
		return
	}

	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	uc.jobs.Complete(req.JobID, model.CompletionMeta{
		Model:            uc.model,
		ProcessingTimeMs: elapsedMs,
		NodesExtracted:   result.NodesCreated,
		EdgesExtracted:   result.EdgesCreated,
		EpisodeID:        result.EpisodeID,
	})
	metrics.IncIngestJob(string(model.JobStatusCompleted))
	log.Info().
		Int("nodes", result.NodesCreated).
		Int("edges", result.EdgesCreated).
		Dur("duration", elapsed).
		Msg("session processed")
}

func shouldIngest(messages []model.IngestMessage) bool {
	if len(messages) < minMessages {
		return false
	}
	total := 0
	for _, m := range messages {
		total += len(m.Content.Resolve())
	}
	return total >= minTotalChars
}

// formatEpisodeBody flattens the session into a single episode body, one
// "<Role>: <content>" line per message, messages joined by a blank line.
func formatEpisodeBody(messages []model.IngestMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Role.Label()+": "+m.Content.Resolve())
	}
	return strings.Join(lines, "\n\n")
}
