package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/faceswap/internal/constants"
	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/types"
	"github.com/celestiaorg/faceswap/pkg/api/v1/client/mock"
	"github.com/celestiaorg/faceswap/test"
)

// resetFlags restores every flag of cmd and its children to its default so
// commands can be executed more than once per test binary
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(new(bytes.Buffer))
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

// useClient points the commands at the suite's API server
func useClient(t *testing.T, suite *test.Suite) {
	useMock(t, nil)
	apiClient = suite.APIClient
}

// useMock replaces the API client for the duration of the test
func useMock(t *testing.T, m *mock.MockClient) {
	original := apiClient
	if m != nil {
		apiClient = m
	}
	t.Cleanup(func() { apiClient = original })
}

// localEnvironment points local commands at temp dirs and a fake pipeline
// that copies the target to the output path
func localEnvironment(t *testing.T, script string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	pipeline := filepath.Join(dir, "pipeline.sh")
	require.NoError(t, os.WriteFile(pipeline, []byte("#!/bin/sh\n"+script+"\n"), 0o700))

	t.Setenv(constants.EnvUploadDir, filepath.Join(dir, "uploads"))
	t.Setenv(constants.EnvOutputDir, filepath.Join(dir, "outputs"))
	t.Setenv(constants.EnvDBPath, filepath.Join(dir, "jobs.db"))
	t.Setenv(constants.EnvPipelineCommand, pipeline)
	t.Setenv(constants.EnvDBHost, "")
	t.Setenv("LOG_LEVEL", "error")
}

const copyTargetScript = `out=""; tgt=""
while [ $# -gt 0 ]; do
  case "$1" in
    --output-path=*) out="${1#*=}" ;;
    --target-path=*) tgt="${1#*=}" ;;
  esac
  shift
done
cp "$tgt" "$out"`

func inputs(t *testing.T) (string, string) {
	dir := t.TempDir()
	source := filepath.Join(dir, "face.jpg")
	target := filepath.Join(dir, "scene.png")
	require.NoError(t, os.WriteFile(source, []byte("source"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("target"), 0o600))
	return source, target
}

func TestOverlayFromFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addSwapFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--params", `{"face_swapper_model":"simswap_256"}`,
		"--set", "output_image_quality=95",
		"--set", "face_enhancer_model=codeformer",
		"--set", `processors=["face_swapper","face_enhancer"]`,
	}))

	overlay, err := overlayFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, "simswap_256", overlay["face_swapper_model"])
	assert.Equal(t, float64(95), overlay["output_image_quality"])
	assert.Equal(t, "codeformer", overlay["face_enhancer_model"])
	assert.Equal(t, []any{"face_swapper", "face_enhancer"}, overlay["processors"])

	bad := &cobra.Command{Use: "x"}
	addSwapFlags(bad)
	require.NoError(t, bad.ParseFlags([]string{"--set", "novalue"}))
	_, err = overlayFromFlags(bad)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addSwapFlags(cmd)
	assert.Equal(t, filepath.Join("in", "output_scene.png"), outputPath(cmd, filepath.Join("in", "scene.png")))

	require.NoError(t, cmd.ParseFlags([]string{"--output", "result.png"}))
	assert.Equal(t, "result.png", outputPath(cmd, "scene.png"))
}

func TestProcessCmd(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()
	useClient(t, suite)

	source, target := inputs(t)
	dest := filepath.Join(t.TempDir(), "result.png")

	out, err := execute(t, "process", "-i", source, "-t", target, "-O", dest, "--set", "face_swapper_model=simswap_256")
	require.NoError(t, err)

	var result processOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, dest, result.Output)
	assert.NotEmpty(t, result.JobID)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, test.DefaultOutput, data)
	assert.Equal(t, "simswap_256", suite.Pipeline.Steps()[0].FaceSwapperModel)
}

func TestProcessCmd_Errors(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()
	useClient(t, suite)
	source, target := inputs(t)

	_, err := execute(t, "process", "-i", source)
	assert.ErrorContains(t, err, `required flag(s) "target" not set`)

	_, err = execute(t, "process", "-i", source, "-t", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorContains(t, err, "error reading target")

	suite.Pipeline.SetMode(test.PipelineFail)
	_, err = execute(t, "process", "-i", source, "-t", target, "-O", filepath.Join(t.TempDir(), "o.png"))
	assert.ErrorContains(t, err, "error processing")
}

func TestHealthCmd(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()
	useClient(t, suite)

	out, err := execute(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)
}

func TestJobsCmd_Remote(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()
	useClient(t, suite)
	source, target := inputs(t)

	out, err := execute(t, "process", "-i", source, "-t", target, "-O", filepath.Join(t.TempDir(), "o.png"))
	require.NoError(t, err)
	var result processOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	out, err = execute(t, "jobs", "list", "--remote")
	require.NoError(t, err)
	var list jobListOutput
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, result.JobID, list.Jobs[0].ID)
	assert.Equal(t, "completed", list.Jobs[0].Status)

	out, err = execute(t, "jobs", "get", "--remote", "--id", result.JobID)
	require.NoError(t, err)
	assert.Contains(t, out, result.JobID)
}

func TestRunCmd_LocalJobs(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()
	useClient(t, suite)
	localEnvironment(t, copyTargetScript)
	source, target := inputs(t)
	dest := filepath.Join(t.TempDir(), "result.png")

	out, err := execute(t, "run", "-i", source, "-t", target, "-O", dest)
	require.NoError(t, err)
	var result processOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Contains(t, result.JobID, "cli-")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "target", string(data))

	out, err = execute(t, "jobs", "list", "--status", "completed")
	require.NoError(t, err)
	var list jobListOutput
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, result.JobID, list.Jobs[0].ID)
	assert.Equal(t, "cli", list.Jobs[0].AppContext)

	out, err = execute(t, "jobs", "get", "--id", result.JobID)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "completed"`)

	_, err = execute(t, "jobs", "get", "--id", "cli-missing")
	assert.ErrorContains(t, err, "error fetching job")
}

func TestRunCmd_PipelineFailure(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()
	useClient(t, suite)
	localEnvironment(t, `echo "model not found" >&2; exit 2`)
	source, target := inputs(t)

	_, err := execute(t, "run", "-i", source, "-t", target, "-O", filepath.Join(t.TempDir(), "o.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run")
	assert.Contains(t, err.Error(), "model not found")

	out, err := execute(t, "jobs", "list", "--status", "failed")
	require.NoError(t, err)
	var list jobListOutput
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	assert.Len(t, list.Jobs, 1)
}

func TestJobsCmd_ListOptions(t *testing.T) {
	m := &mock.MockClient{}
	useMock(t, m)

	_, err := execute(t, "jobs", "list", "--remote", "--limit", "5", "--offset", "10", "--status", "failed")
	require.NoError(t, err)
	require.Len(t, m.ListJobsCalls, 1)
	opts := m.ListJobsCalls[0]
	assert.Equal(t, 5, opts.Limit)
	assert.Equal(t, 10, opts.Offset)
	require.NotNil(t, opts.Status)
	assert.Equal(t, models.JobStatusFailed, *opts.Status)

	_, err = execute(t, "jobs", "list", "--remote", "--status", "bogus")
	assert.ErrorContains(t, err, "invalid job status")
	assert.Len(t, m.ListJobsCalls, 1)
}

func TestJobsCmd_GetRemote(t *testing.T) {
	m := &mock.MockClient{}
	useMock(t, m)

	out, err := execute(t, "jobs", "get", "--remote", "--id", "api-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"api-1"}, m.GetJobCalls)
	assert.Contains(t, out, `"id": "api-1"`)

	m.GetJobFn = func(context.Context, string) (models.Job, error) {
		return models.Job{}, errors.New("Job not found")
	}
	_, err = execute(t, "jobs", "get", "--remote", "--id", "api-2")
	assert.ErrorContains(t, err, "error fetching job: Job not found")
}

func TestHealthCmd_Error(t *testing.T) {
	m := &mock.MockClient{
		HealthCheckFn: func(context.Context) (types.HealthResponse, error) {
			return types.HealthResponse{}, errors.New("connection refused")
		},
	}
	useMock(t, m)

	_, err := execute(t, "health")
	assert.ErrorContains(t, err, "error checking health: connection refused")
	assert.Equal(t, 1, m.HealthCheckCalls)
}

func TestProcessCmd_SendsOverlay(t *testing.T) {
	m := &mock.MockClient{}
	useMock(t, m)
	source, target := inputs(t)
	dest := filepath.Join(t.TempDir(), "echo.png")

	_, err := execute(t, "process", "-i", source, "-t", target, "-O", dest,
		"--params", `{"face_enhancer_blend":40}`, "--set", "face_swapper_model=simswap_256")
	require.NoError(t, err)

	require.Len(t, m.ProcessCalls, 1)
	req := m.ProcessCalls[0]
	assert.Equal(t, "face.jpg", req.Source.Name)
	assert.Equal(t, "scene.png", req.Target.Name)
	assert.Equal(t, map[string]any{"face_enhancer_blend": float64(40), "face_swapper_model": "simswap_256"}, req.Params)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "target", string(data))
}

func TestServerAddressPrecedence(t *testing.T) {
	useMock(t, &mock.MockClient{})
	t.Setenv(constants.EnvServerAddress, "http://env:5000")

	_, err := execute(t, "health")
	require.NoError(t, err)
	assert.Equal(t, "http://env:5000", serverAddress)

	_, err = execute(t, "health", "--server-address", "http://flag:5000")
	require.NoError(t, err)
	assert.Equal(t, "http://flag:5000", serverAddress)
}
