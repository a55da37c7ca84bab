package services

import (
	"errors"
	"fmt"

	"github.com/celestiaorg/faceswap/internal/jobs"
)

// ErrorKind classifies a failed request. The HTTP layer maps each kind to a
// status code.
type ErrorKind int

const (
	// KindInternal is a broken internal contract
	KindInternal ErrorKind = iota
	// KindBadRequest is malformed or missing client input
	KindBadRequest
	// KindStagingFailure is a failure to persist an upload
	KindStagingFailure
	// KindJobStageFailure is a failed job lifecycle stage
	KindJobStageFailure
	// KindOutputMissing is a successful job without an output file
	KindOutputMissing
)

var kindNames = map[ErrorKind]string{
	KindInternal:        "internal",
	KindBadRequest:      "bad_request",
	KindStagingFailure:  "staging_failure",
	KindJobStageFailure: "job_stage_failure",
	KindOutputMissing:   "output_missing",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ErrMissingUploads is returned when the source or target upload is absent
var ErrMissingUploads = errors.New("both source and target files are required")

// Error is the failure result of Process
type Error struct {
	Kind ErrorKind
	// Stage is set for KindJobStageFailure
	Stage jobs.Stage
	JobID string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindJobStageFailure {
		cause := e.Err
		var se *jobs.StageError
		if errors.As(e.Err, &se) {
			cause = se.Err
		}
		return fmt.Sprintf("job stage %s failed: %v", e.Stage, cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the *Error in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind ErrorKind, jobID string, err error) *Error {
	return &Error{Kind: kind, JobID: jobID, Err: err}
}

func jobStageError(jobID string, err error) *Error {
	stage, ok := jobs.FailedStage(err)
	if !ok {
		return newError(KindInternal, jobID, err)
	}
	return &Error{Kind: KindJobStageFailure, Stage: stage, JobID: jobID, Err: err}
}
