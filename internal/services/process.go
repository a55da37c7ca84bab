// Package services provides the request orchestration of the API
package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/executor"
	"github.com/celestiaorg/faceswap/internal/jobs"
	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/params"
	"github.com/celestiaorg/faceswap/internal/staging"
)

// Upload is one uploaded file of a request
type Upload struct {
	Name   string
	Reader io.Reader
}

// ProcessRequest is the input of one swap. Source and Target are required;
// Params is an optional JSON object of parameter overrides.
type ProcessRequest struct {
	Source *Upload
	Target *Upload
	Params string
}

// ProcessResult points at the produced output file. The caller owns the
// output and streams it to the client.
type ProcessResult struct {
	JobID    string
	Output   *staging.StagedFile
	Applied  []string
	Rejected []params.Rejection
	Duration time.Duration
}

// Process runs uploads through a single-step job
type Process struct {
	staging  *staging.Manager
	jobs     *jobs.Manager
	executor executor.Executor
	defaults params.Params
}

// NewProcessService creates a process service. defaults are the parameters
// every request starts from; the path keys are filled in per request.
func NewProcessService(st *staging.Manager, jm *jobs.Manager, exec executor.Executor, defaults params.Params) *Process {
	return &Process{
		staging:  st,
		jobs:     jm,
		executor: exec,
		defaults: defaults.Clone(),
	}
}

// Process stages the uploads, builds the step parameters, and drives a job
// through create, add step, submit and run. Staged inputs are removed on
// every return path; the output is left for the caller. Failures are *Error.
func (s *Process) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	start := time.Now()
	if req.Source == nil || req.Target == nil {
		return nil, newError(KindBadRequest, "", ErrMissingUploads)
	}

	var inputs []*staging.StagedFile
	defer func() { s.staging.Cleanup(inputs...) }()

	source, err := s.staging.Stage(req.Source.Reader, req.Source.Name, staging.RoleSource)
	if err != nil {
		return nil, newError(KindStagingFailure, "", err)
	}
	inputs = append(inputs, source)

	target, err := s.staging.Stage(req.Target.Reader, req.Target.Name, staging.RoleTarget)
	if err != nil {
		return nil, newError(KindStagingFailure, "", err)
	}
	inputs = append(inputs, target)

	output := s.staging.OutputFor(target)
	logger.DebugWithFields("Staged uploads", map[string]interface{}{
		"source": source.Path,
		"target": target.Path,
		"output": output.Path,
	})

	store, err := s.seedStore(source, target, output)
	if err != nil {
		return nil, newError(KindInternal, "", err)
	}

	result := &ProcessResult{Output: output}
	overlay, err := params.ParseOverlay(req.Params)
	if err != nil {
		// a malformed overlay runs the job with defaults only
		logger.Warnf("Ignoring parameter overrides: %v", err)
	} else if len(overlay) > 0 {
		result.Applied, result.Rejected = params.ApplyOverlay(store, overlay)
		for _, r := range result.Rejected {
			logger.WarnWithFields("Ignoring parameter override", map[string]interface{}{
				"key":    r.Key,
				"reason": r.Reason,
			})
		}
	}

	step, err := store.Params()
	if err != nil {
		return nil, newError(KindInternal, "", fmt.Errorf("failed to read step parameters: %w", err))
	}

	jobID := jobs.SuggestJobID(appctx.Resolve(ctx).String())
	result.JobID = jobID
	if err := s.runJob(ctx, jobID, step); err != nil {
		return nil, err
	}

	if !s.staging.Exists(output) {
		return nil, newError(KindOutputMissing, jobID, fmt.Errorf("output file not found at %s", output.Path))
	}

	result.Duration = time.Since(start)
	logger.InfoWithFields("Processed request", map[string]interface{}{
		"job_id":   jobID,
		"duration": result.Duration.String(),
	})
	return result, nil
}

// seedStore builds the request's own parameter store from the defaults and
// the staged paths, and checks that every required key is present
func (s *Process) seedStore(source, target, output *staging.StagedFile) (*params.Store, error) {
	defaults := s.defaults.Clone()
	defaults.SourcePaths = []string{source.Path}
	defaults.TargetPath = target.Path
	defaults.OutputPath = output.Path

	store := params.NewStore()
	if err := store.Seed(defaults); err != nil {
		return nil, fmt.Errorf("failed to seed parameters: %w", err)
	}
	if err := store.Require(params.RequiredKeys()...); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Process) runJob(ctx context.Context, jobID string, step params.Params) error {
	if err := s.jobs.Create(ctx, jobID); err != nil {
		return jobStageError(jobID, err)
	}
	if err := s.jobs.AddStep(ctx, jobID, step); err != nil {
		return jobStageError(jobID, err)
	}
	if err := s.jobs.Submit(ctx, jobID); err != nil {
		return jobStageError(jobID, err)
	}
	if err := s.jobs.Run(ctx, jobID, s.executor); err != nil {
		return jobStageError(jobID, err)
	}
	return nil
}
