// Package jobs drives a job through its lifecycle:
// created -> (AddStep) -> populated -> (Submit) -> queued -> (Run) -> running -> completed | failed.
//
// Every stage returns nil or a *StageError naming the stage.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/events"
	"github.com/celestiaorg/faceswap/internal/executor"
	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/params"
)

const (
	// finishAttempts bounds the writes of a run outcome
	finishAttempts = 3
	finishBackoff  = 10 * time.Millisecond
)

// Manager owns all job state transitions
type Manager struct {
	stores StoreSet
	bus    *events.Bus

	// mu guards read-modify-write transitions. It is never held while the
	// executor runs.
	mu sync.Mutex
}

// NewManager creates a lifecycle manager. bus may be nil.
func NewManager(stores StoreSet, bus *events.Bus) *Manager {
	return &Manager{stores: stores, bus: bus}
}

// Create records a new job in the created state. A taken id fails.
func (m *Manager) Create(ctx context.Context, id string) error {
	if id == "" {
		return stageErr(StageCreate, id, ErrInvalidJobID)
	}
	store, err := m.stores.For(ctx)
	if err != nil {
		return stageErr(StageCreate, id, err)
	}

	ac := appctx.Resolve(ctx)
	job := &models.Job{
		ID:         id,
		AppContext: ac.String(),
		Status:     models.JobStatusCreated,
		CreatedAt:  time.Now(),
	}
	if err := store.Create(ctx, job); err != nil {
		return stageErr(StageCreate, id, err)
	}

	m.publish(events.Event{Type: events.EventJobCreated, JobID: id, AppContext: ac.String()})
	return nil
}

// AddStep attaches the only step of a job. The parameters are copied.
func (m *Manager) AddStep(ctx context.Context, id string, p params.Params) error {
	return m.transition(ctx, StageAddStep, id, func(job *models.Job) error {
		if job.Status != models.JobStatusCreated {
			return fmt.Errorf("%w: cannot add a step to a %s job", ErrInvalidState, job.Status)
		}
		if len(job.Steps) > 0 {
			return ErrStepExists
		}
		job.Steps = []models.Step{{Parameters: p.Clone()}}
		return nil
	})
}

// Submit queues a populated job
func (m *Manager) Submit(ctx context.Context, id string) error {
	err := m.transition(ctx, StageSubmit, id, func(job *models.Job) error {
		if job.Status != models.JobStatusCreated {
			return fmt.Errorf("%w: cannot submit a %s job", ErrInvalidState, job.Status)
		}
		if len(job.Steps) == 0 {
			return ErrNoSteps
		}
		job.Status = models.JobStatusQueued
		return nil
	})
	if err == nil {
		m.publish(events.Event{Type: events.EventJobSubmitted, JobID: id, AppContext: appctx.Resolve(ctx).String()})
	}
	return err
}

// Run hands the step of a queued job to exec and records the outcome. The
// executor is only invoked for queued jobs; cancellation of ctx before the
// executor starts fails the job without invoking it. Run never panics.
func (m *Manager) Run(ctx context.Context, id string, exec executor.Executor) error {
	if exec == nil {
		return stageErr(StageRun, id, errors.New("executor is required"))
	}

	var step params.Params
	err := m.transition(ctx, StageRun, id, func(job *models.Job) error {
		if job.Status != models.JobStatusQueued {
			return fmt.Errorf("%w: cannot run a %s job", ErrInvalidState, job.Status)
		}
		if len(job.Steps) == 0 {
			return ErrNoSteps
		}
		now := time.Now()
		job.Status = models.JobStatusRunning
		job.StartedAt = &now
		step = job.Steps[0].Parameters.Clone()
		return nil
	})
	if err != nil {
		return err
	}

	start := time.Now()
	execErr := ctx.Err()
	if execErr == nil {
		execErr = safeExecute(ctx, exec, step)
	}
	duration := time.Since(start)

	finishErr := m.finish(ctx, id, execErr)

	ac := appctx.Resolve(ctx).String()
	if execErr != nil && finishErr != nil {
		logger.ErrorWithFields("Job failed and its outcome was not recorded", map[string]interface{}{
			"job_id": id,
			"error":  execErr.Error(),
			"store":  finishErr.Error(),
		})
		m.publish(events.Event{Type: events.EventJobFailed, JobID: id, AppContext: ac, Error: execErr.Error(), Duration: duration})
		return stageErr(StageRun, id, errors.Join(execErr, finishErr))
	}
	if execErr != nil {
		logger.WarnWithFields("Job failed", map[string]interface{}{
			"job_id":   id,
			"duration": duration.String(),
			"error":    execErr.Error(),
		})
		m.publish(events.Event{Type: events.EventJobFailed, JobID: id, AppContext: ac, Error: execErr.Error(), Duration: duration})
		return stageErr(StageRun, id, execErr)
	}
	if finishErr != nil {
		return stageErr(StageRun, id, finishErr)
	}

	logger.InfoWithFields("Job completed", map[string]interface{}{
		"job_id":   id,
		"duration": duration.String(),
	})
	m.publish(events.Event{Type: events.EventJobCompleted, JobID: id, AppContext: ac, Duration: duration})
	return nil
}

// finish records the outcome of a run, retrying the write so the job does not
// stay running when the store fails transiently
func (m *Manager) finish(ctx context.Context, id string, execErr error) error {
	var err error
	for attempt := 1; attempt <= finishAttempts; attempt++ {
		err = m.transition(ctx, StageRun, id, func(job *models.Job) error {
			now := time.Now()
			job.CompletedAt = &now
			if execErr != nil {
				job.Status = models.JobStatusFailed
				job.Error = execErr.Error()
				return nil
			}
			job.Status = models.JobStatusCompleted
			job.Error = ""
			return nil
		})
		if err == nil {
			return nil
		}
		logger.WarnWithFields("Failed to record job outcome", map[string]interface{}{
			"job_id":  id,
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < finishAttempts {
			time.Sleep(time.Duration(attempt) * finishBackoff)
		}
	}
	var se *StageError
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}

// Get returns a copy of a job
func (m *Manager) Get(ctx context.Context, id string) (*models.Job, error) {
	store, err := m.stores.For(ctx)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

// List returns jobs of the store selected by ctx
func (m *Manager) List(ctx context.Context, opts *models.ListOptions) ([]models.Job, error) {
	store, err := m.stores.For(ctx)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, opts)
}

// transition loads a job, applies fn and writes it back under the manager
// lock. Errors are wrapped as a *StageError for stage. Cancellation of ctx
// does not interrupt a write, so a job is never left half updated.
func (m *Manager) transition(ctx context.Context, stage Stage, id string, fn func(*models.Job) error) error {
	ctx = context.WithoutCancel(ctx)
	store, err := m.stores.For(ctx)
	if err != nil {
		return stageErr(stage, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job, err := store.Get(ctx, id)
	if err != nil {
		return stageErr(stage, id, err)
	}
	if err := fn(job); err != nil {
		return stageErr(stage, id, err)
	}
	if err := store.Update(ctx, job); err != nil {
		return stageErr(stage, id, err)
	}
	return nil
}

func (m *Manager) publish(e events.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

func safeExecute(ctx context.Context, exec executor.Executor, p params.Params) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutorPanic, r)
		}
	}()
	return exec.ExecuteStep(ctx, p)
}
