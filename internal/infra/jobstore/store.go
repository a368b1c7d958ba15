// File: internal/infra/jobstore/store.go
package jobstore

import (
	"sync"
	"time"

	"github.com/synapse-ai/cortex/internal/domain/model"
)

// Store is an in-memory registry of in-flight ingestion jobs. Entries are
// small fixed-size records; the compilation text never lives here. There is
// no durability: a lost process loses its jobs and the caller resubmits.
//
// All methods are safe for arbitrary concurrent callers and never block on
// I/O. The store is an injected value, not package state, so tests can run
// isolated stores in parallel.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*model.IngestJob
	now  func() time.Time
}

func New() *Store {
	return &Store{jobs: make(map[string]*model.IngestJob), now: time.Now}
}

// Create inserts a new processing entry. It returns false without touching
// state when jobID already exists; this is the idempotency guard against
// duplicate submission. Concurrent creates for one jobID yield exactly one
// true.
func (s *Store) Create(jobID, userID, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[jobID]; exists {
		return false
	}
	s.jobs[jobID] = &model.IngestJob{
		ID:        jobID,
		Status:    model.JobStatusProcessing,
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: s.now(),
	}
	return true
}

// Get returns a snapshot copy of the job, or false when absent.
func (s *Store) Get(jobID string) (model.IngestJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return model.IngestJob{}, false
	}
	snap := *job
	if job.Completion != nil {
		meta := *job.Completion
		snap.Completion = &meta
	}
	return snap, true
}

// Complete transitions the job to completed and attaches metadata. A missing
// job (already removed by a racing poll) is ignored.
func (s *Store) Complete(jobID string, meta model.CompletionMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = model.JobStatusCompleted
		job.Completion = &meta
	}
}

// Fail transitions the job to failed. A missing job is ignored.
func (s *Store) Fail(jobID, errMsg, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = model.JobStatusFailed
		job.Error = errMsg
		job.Code = code
	}
}

// Remove deletes the entry. Removing a missing key is not an error.
func (s *Store) Remove(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
