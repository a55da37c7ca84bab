package jobs

import (
	"errors"
	"fmt"
)

// Stage names one step of the job lifecycle
type Stage string

// Lifecycle stages in the order a job passes them
const (
	StageCreate  Stage = "create"
	StageAddStep Stage = "add_step"
	StageSubmit  Stage = "submit"
	StageRun     Stage = "run"
)

var (
	// ErrInvalidState is returned when a stage is called out of order
	ErrInvalidState = errors.New("invalid job state")
	// ErrStepExists is returned when a second step is added
	ErrStepExists = errors.New("job already has a step")
	// ErrNoSteps is returned when a job without steps is submitted
	ErrNoSteps = errors.New("job has no steps")
	// ErrExecutorPanic wraps a recovered panic of the executor
	ErrExecutorPanic = errors.New("executor panicked")
	// ErrInvalidJobID is returned for empty job ids
	ErrInvalidJobID = errors.New("invalid job id")
)

// StageError is the failure result of a lifecycle stage
type StageError struct {
	Stage Stage
	JobID string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("job %s: stage %q failed: %v", e.JobID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, jobID string, err error) *StageError {
	return &StageError{Stage: stage, JobID: jobID, Err: err}
}

// FailedStage returns the stage of a *StageError in err's chain
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
