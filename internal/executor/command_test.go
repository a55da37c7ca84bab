package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/params"
)

func testParams() params.Params {
	p := params.Defaults(params.DefaultCapabilities())
	p.SourcePaths = []string{"/up/source.png"}
	p.TargetPath = "/up/target.png"
	p.OutputPath = "/out/output_target.png"
	return p
}

func TestBuildArgs(t *testing.T) {
	args, err := BuildArgs(testParams())
	require.NoError(t, err)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "--source-paths /up/source.png")
	assert.Contains(t, joined, "--target-path=/up/target.png")
	assert.Contains(t, joined, "--output-path=/out/output_target.png")
	assert.Contains(t, joined, "--face-detector-score=0.5")
	assert.Contains(t, joined, "--face-mask-padding 0 0 0 0")
	assert.Contains(t, joined, "--keep-fps")
	assert.NotContains(t, joined, "--keep-temp")
	assert.NotContains(t, joined, "--face-analyser-age")

	// deterministic order
	again, err := BuildArgs(testParams())
	require.NoError(t, err)
	assert.Equal(t, args, again)
}

func TestBuildArgsIncludesExtra(t *testing.T) {
	p := testParams()
	p.Extra = map[string]any{"lip_syncer_model": "wav2lip_gan"}

	args, err := BuildArgs(p)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(args, " "), "--lip-syncer-model=wav2lip_gan")
}

func TestBuildArgsKeepsStagedPaths(t *testing.T) {
	p := testParams()
	p.UILayouts = []string{"default", "--output-path", "/etc/evil"}

	_, err := BuildArgs(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ui_layouts")

	p = testParams()
	p.FaceSwapperModel = "inswapper_128 --output-path /etc/evil"
	p.Extra = map[string]any{"lip_syncer_model": "-x"}
	args, err := BuildArgs(p)
	require.NoError(t, err)

	var outputs []string
	for _, a := range args {
		if strings.HasPrefix(a, "--output-path") {
			outputs = append(outputs, a)
		}
	}
	assert.Equal(t, []string{"--output-path=/out/output_target.png"}, outputs)
	assert.Contains(t, args, "--face-swapper-model=inswapper_128 --output-path /etc/evil")
	assert.Contains(t, args, "--lip-syncer-model=-x")
}

func TestBuildArgsFromOverlay(t *testing.T) {
	store := params.NewStore()
	require.NoError(t, store.Seed(testParams()))

	_, rejected := params.ApplyOverlay(store, map[string]any{
		"output_path": "/etc/evil",
		"ui_layouts":  []any{"default", "--output-path", "/etc/evil", "--target-path", "/etc/shadow"},
		"temp_path":   "/etc",
	})
	assert.Len(t, rejected, 3)

	p, err := store.Params()
	require.NoError(t, err)
	args, err := BuildArgs(p)
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.NotContains(t, joined, "/etc/")
	assert.NotContains(t, joined, "--temp-path")
	assert.Contains(t, args, "--output-path=/out/output_target.png")
	assert.Contains(t, args, "--target-path=/up/target.png")
}

func TestSubcommandFor(t *testing.T) {
	assert.Equal(t, SubcommandHeadless, subcommandFor(appctx.API))
	assert.Equal(t, SubcommandHeadless, subcommandFor(appctx.CLI))
	assert.Equal(t, SubcommandUI, subcommandFor(appctx.UI))
}

func TestNewCommand(t *testing.T) {
	c, err := NewCommand("python  facefusion.py")
	require.NoError(t, err)
	assert.Equal(t, "python", c.Path)
	assert.Equal(t, []string{"facefusion.py"}, c.Args)

	_, err = NewCommand("   ")
	assert.Error(t, err)
}

// writeScript creates an executable shell script in a temp dir
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "pipeline.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))
	return path
}

func TestCommand_ExecuteStep(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args.txt")
	script := writeScript(t, `echo "$@" > "`+out+`"`)

	c := &Command{Path: script}
	err := c.ExecuteStep(appctx.With(context.Background(), appctx.API), testParams())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), SubcommandHeadless+" "))
	assert.Contains(t, string(data), "--target-path=/up/target.png")
}

func TestCommand_ExecuteStepFailure(t *testing.T) {
	script := writeScript(t, `echo "no face detected" >&2; exit 3`)

	c := &Command{Path: script}
	err := c.ExecuteStep(context.Background(), testParams())

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Error(), "no face detected")
}

func TestCommand_ExecuteStepCancelled(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := &Command{Path: script}
	err := c.ExecuteStep(ctx, testParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommand_MissingBinary(t *testing.T) {
	c := &Command{Path: filepath.Join(t.TempDir(), "does-not-exist")}
	err := c.ExecuteStep(context.Background(), testParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start pipeline")
}

func TestFunc(t *testing.T) {
	called := false
	var e Executor = Func(func(context.Context, params.Params) error {
		called = true
		return nil
	})
	require.NoError(t, e.ExecuteStep(context.Background(), params.Params{}))
	assert.True(t, called)
}
