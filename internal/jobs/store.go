package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/db/repos"
)

// ErrNoStore is returned when no store is configured for an app context
var ErrNoStore = errors.New("no job store configured")

// Store persists job records
type Store interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	List(ctx context.Context, opts *models.ListOptions) ([]models.Job, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*repos.JobRepository)(nil)
)

// MemoryStore keeps jobs for the lifetime of the process
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.Job)}
}

// Create stores a copy of job
func (s *MemoryStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("%w: %s", models.ErrJobExists, job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the stored job
func (s *MemoryStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, id)
	}
	return job.Clone(), nil
}

// Update replaces an existing job
func (s *MemoryStore) Update(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("%w: %s", models.ErrJobNotFound, job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// List returns jobs, newest first
func (s *MemoryStore) List(_ context.Context, opts *models.ListOptions) ([]models.Job, error) {
	if opts == nil {
		opts = &models.ListOptions{}
	}
	opts.Normalize()

	s.mu.RLock()
	jobs := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if opts.Status != nil && *opts.Status != models.JobStatusUnknown && j.Status != *opts.Status {
			continue
		}
		jobs = append(jobs, *j.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(a, b int) bool {
		return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
	})

	if opts.Offset >= len(jobs) {
		return []models.Job{}, nil
	}
	jobs = jobs[opts.Offset:]
	if len(jobs) > opts.Limit {
		jobs = jobs[:opts.Limit]
	}
	return jobs, nil
}

// Prune drops terminal jobs that completed before cutoff and returns how many
// were removed
func (s *MemoryStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, j := range s.jobs {
		if !j.Status.IsTerminal() || j.CompletedAt == nil || !j.CompletedAt.Before(cutoff) {
			continue
		}
		delete(s.jobs, id)
		removed++
	}
	return removed
}

// StoreSet selects a job store by app context. Contexts without an entry fall
// back to the CLI store.
type StoreSet map[appctx.AppContext]Store

// For returns the store for the app context carried by ctx
func (s StoreSet) For(ctx context.Context) (Store, error) {
	if st, ok := s[appctx.Resolve(ctx)]; ok {
		return st, nil
	}
	if st, ok := s[appctx.CLI]; ok {
		return st, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoStore, appctx.Resolve(ctx))
}
