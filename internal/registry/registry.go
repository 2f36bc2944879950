// Package registry holds processing records and their artifacts in process
// memory. State lives for the lifetime of the process only; entries are never
// evicted, so the maps grow without bound.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praxisapp/praxis-backend/internal/model"
)

// Registry maps processing identifiers to records, analyses, skills and jobs.
// Safe for concurrent use; each identifier is written by exactly one request.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]*model.ProcessingRecord
	analyses map[string]*model.Analysis
	skills   map[string][]model.Skill
	jobs     map[string][]model.Job
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		records:  make(map[string]*model.ProcessingRecord),
		analyses: make(map[string]*model.Analysis),
		skills:   make(map[string][]model.Skill),
		jobs:     make(map[string][]model.Job),
	}
}

// Create inserts a new record with status processing and returns its
// identifier. Identifiers are never reused.
func (r *Registry) Create(userID string, mediaType model.MediaType) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[id] = &model.ProcessingRecord{
		ID:        id,
		UserID:    userID,
		Status:    model.StatusProcessing,
		MediaType: mediaType,
		CreatedAt: time.Now(),
	}

	return id
}

// Complete marks the record done and stores its artifacts. Records already in
// a terminal state are left untouched.
func (r *Registry) Complete(id string, analysis *model.Analysis, skills []model.Skill, jobs []model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return fmt.Errorf("completing record %s: %w", id, model.ErrNotFound)
	}

	if record.Status.Terminal() {
		return nil
	}

	record.Status = model.StatusDone
	r.analyses[id] = analysis
	r.skills[id] = append([]model.Skill(nil), skills...)
	r.jobs[id] = append([]model.Job(nil), jobs...)

	return nil
}

// Fail marks the record failed. Idempotent for records already in a terminal
// state.
func (r *Registry) Fail(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return fmt.Errorf("failing record %s: %w", id, model.ErrNotFound)
	}

	if record.Status.Terminal() {
		return nil
	}

	record.Status = model.StatusFailed

	return nil
}

// Record returns a copy of the processing record for the given identifier.
func (r *Registry) Record(id string) (model.ProcessingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return model.ProcessingRecord{}, fmt.Errorf("record %s: %w", id, model.ErrNotFound)
	}

	return *record, nil
}

// Analysis returns the stored analysis for the given identifier, or nil when
// the record exists but has not completed yet.
func (r *Registry) Analysis(id string) (*model.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.records[id]; !ok {
		return nil, fmt.Errorf("analysis for %s: %w", id, model.ErrNotFound)
	}

	return r.analyses[id], nil
}

// Skills returns the stored skills for the given identifier.
func (r *Registry) Skills(id string) ([]model.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skills, ok := r.skills[id]
	if !ok {
		return nil, fmt.Errorf("skills for %s: %w", id, model.ErrNotFound)
	}

	return append([]model.Skill(nil), skills...), nil
}

// Jobs returns the stored jobs for the given identifier.
func (r *Registry) Jobs(id string) ([]model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("jobs for %s: %w", id, model.ErrNotFound)
	}

	return append([]model.Job(nil), jobs...), nil
}
