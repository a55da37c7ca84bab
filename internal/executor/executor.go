// Package executor defines the execution capability a job step is handed to
package executor

import (
	"context"

	"github.com/celestiaorg/faceswap/internal/params"
)

// Executor performs the media transformation described by one step. A nil
// error means the step succeeded.
type Executor interface {
	ExecuteStep(ctx context.Context, p params.Params) error
}

// Func adapts a plain function to the Executor interface
type Func func(ctx context.Context, p params.Params) error

// ExecuteStep calls f
func (f Func) ExecuteStep(ctx context.Context, p params.Params) error {
	return f(ctx, p)
}
