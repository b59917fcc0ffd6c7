package repositories

import (
	"errors"
	"sync"
	"time"

	"alfredoptarigan/research-advisor/internal/models"
)

var (
	ErrRunNotFound = errors.New("analysis run not found")
	ErrRunExists   = errors.New("analysis run already exists")
)

// RunRepository keeps async analysis runs. Runs live only in process memory
// and disappear on restart.
type RunRepository interface {
	Create(run models.RunState) error
	FindByID(id string) (models.RunState, error)
	Update(id string, fn func(models.RunState) models.RunState) (models.RunState, error)
	Delete(id string)
	DeleteFinishedBefore(cutoff time.Time) int
	Count() int
}

type runRepository struct {
	mu   sync.RWMutex
	runs map[string]models.RunState
}

func NewRunRepository() RunRepository {
	return &runRepository{runs: make(map[string]models.RunState)}
}

func (r *runRepository) Create(run models.RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return ErrRunExists
	}
	r.runs[run.ID] = run
	return nil
}

func (r *runRepository) FindByID(id string) (models.RunState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return models.RunState{}, ErrRunNotFound
	}
	return run, nil
}

// Update applies fn to the stored run under the write lock and stores the
// result. Terminal runs are returned unchanged.
func (r *runRepository) Update(id string, fn func(models.RunState) models.RunState) (models.RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return models.RunState{}, ErrRunNotFound
	}
	if run.Terminal() {
		return run, nil
	}

	updated := fn(run)
	r.runs[id] = updated
	return updated, nil
}

func (r *runRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, id)
}

// DeleteFinishedBefore evicts terminal runs last updated before cutoff.
func (r *runRepository) DeleteFinishedBefore(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, run := range r.runs {
		if run.Terminal() && run.UpdatedAt.Before(cutoff) {
			delete(r.runs, id)
			deleted++
		}
	}
	return deleted
}

func (r *runRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}
