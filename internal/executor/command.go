package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/params"
)

// Subcommands of the external pipeline
const (
	SubcommandHeadless = "headless-run"
	SubcommandUI       = "run"

	maxOutputTail = 2048
	waitDelay     = 5 * time.Second
)

// ExitError is returned when the pipeline process exits unsuccessfully
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("pipeline exited with status %d", e.Code)
	}
	return fmt.Sprintf("pipeline exited with status %d: %s", e.Code, e.Output)
}

// Command runs the pipeline as an external process, one process per step
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// NewCommand splits a command line such as "python facefusion.py" into the
// binary and its leading arguments
func NewCommand(cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, errors.New("executor command is empty")
	}
	return &Command{Path: fields[0], Args: fields[1:]}, nil
}

// ExecuteStep starts the pipeline and waits for it. Cancelling ctx kills the
// process.
func (c *Command) ExecuteStep(ctx context.Context, p params.Params) error {
	stepArgs, err := BuildArgs(p)
	if err != nil {
		return err
	}

	args := make([]string, 0, len(c.Args)+1+len(stepArgs))
	args = append(args, c.Args...)
	args = append(args, subcommandFor(appctx.Resolve(ctx)))
	args = append(args, stepArgs...)

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	// bound the wait for orphaned children still holding the output pipe
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	logger.DebugWithFields("Pipeline finished", map[string]interface{}{
		"command":  c.Path,
		"duration": time.Since(start).String(),
		"output":   tail(out.String()),
	})

	if ctx.Err() != nil {
		return fmt.Errorf("pipeline cancelled: %w", ctx.Err())
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Output: tail(out.String())}
		}
		return fmt.Errorf("failed to start pipeline: %w", runErr)
	}
	return nil
}

func subcommandFor(ac appctx.AppContext) string {
	if ac == appctx.UI {
		return SubcommandUI
	}
	return SubcommandHeadless
}

// BuildArgs renders the step parameters as command line flags in key order.
// Null values, false booleans and empty lists are omitted; true booleans
// become bare flags; single values are joined to their flag as --flag=value;
// lists repeat their values after the flag. A list element that starts with
// '-' is an error since the pipeline would read it as a flag.
func BuildArgs(p params.Params) ([]string, error) {
	items, err := p.Items()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var args []string
	for _, k := range keys {
		flag := "--" + strings.ReplaceAll(k, "_", "-")
		switch v := items[k].(type) {
		case nil:
		case bool:
			if v {
				args = append(args, flag)
			}
		case []any:
			if len(v) == 0 {
				continue
			}
			args = append(args, flag)
			for _, e := range v {
				s, err := formatValue(e)
				if err != nil {
					return nil, fmt.Errorf("invalid value for %s: %w", k, err)
				}
				if _, isString := e.(string); isString && strings.HasPrefix(s, "-") {
					return nil, fmt.Errorf("invalid value for %s: %q looks like a flag", k, s)
				}
				args = append(args, s)
			}
		default:
			s, err := formatValue(v)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", k, err)
			}
			if s == "" {
				continue
			}
			args = append(args, flag+"="+s)
		}
	}
	return args, nil
}

func formatValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxOutputTail {
		return s
	}
	return s[len(s)-maxOutputTail:]
}
