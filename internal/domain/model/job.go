package model

import "time"

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// CompletionMeta carries the lightweight result of a successful extraction.
// The compilation itself is never stored with the job; it is rebuilt from the
// graph when the job is polled.
type CompletionMeta struct {
	Model            string
	ProcessingTimeMs float64
	NodesExtracted   int
	EdgesExtracted   int
	EpisodeID        string
}

// IngestJob tracks one in-flight or recently finished extraction request.
// Exactly one of Completion and Error/Code is set, and only once the job has
// reached a terminal status.
type IngestJob struct {
	ID         string
	Status     JobStatus
	UserID     string
	SessionID  string
	CreatedAt  time.Time
	Completion *CompletionMeta
	Error      string
	Code       string
}
