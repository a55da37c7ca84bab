package test

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/celestiaorg/faceswap/internal/params"
)

// PipelineMode selects how the test pipeline behaves
type PipelineMode int

const (
	// PipelineWriteOutput writes Output to the output path
	PipelineWriteOutput PipelineMode = iota
	// PipelineFail returns ErrPipelineFailed
	PipelineFail
	// PipelineNoOutput succeeds without writing anything
	PipelineNoOutput
)

// ErrPipelineFailed is returned in PipelineFail mode
var ErrPipelineFailed = errors.New("pipeline failed")

// Pipeline is an executor for tests. It records every step it receives.
type Pipeline struct {
	mu     sync.Mutex
	mode   PipelineMode
	output []byte
	steps  []params.Params
}

// NewPipeline returns a pipeline that writes output
func NewPipeline(output []byte) *Pipeline {
	return &Pipeline{output: output}
}

// SetMode changes the behaviour for subsequent steps
func (p *Pipeline) SetMode(mode PipelineMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// Steps returns the steps received so far
func (p *Pipeline) Steps() []params.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]params.Params, len(p.steps))
	copy(out, p.steps)
	return out
}

// ExecuteStep implements executor.Executor
func (p *Pipeline) ExecuteStep(_ context.Context, step params.Params) error {
	p.mu.Lock()
	p.steps = append(p.steps, step.Clone())
	mode, output := p.mode, p.output
	p.mu.Unlock()

	switch mode {
	case PipelineFail:
		return ErrPipelineFailed
	case PipelineNoOutput:
		return nil
	default:
		return os.WriteFile(step.OutputPath, output, 0o600)
	}
}
