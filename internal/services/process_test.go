package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/executor"
	"github.com/celestiaorg/faceswap/internal/jobs"
	"github.com/celestiaorg/faceswap/internal/params"
	"github.com/celestiaorg/faceswap/internal/staging"
)

type ProcessTestSuite struct {
	suite.Suite
	ctx     context.Context
	staging *staging.Manager
	store   *jobs.MemoryStore
	jobs    *jobs.Manager
}

func TestProcessTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessTestSuite))
}

func (s *ProcessTestSuite) SetupTest() {
	dir := s.T().TempDir()
	st, err := staging.NewManager(filepath.Join(dir, "uploads"), filepath.Join(dir, "outputs"))
	s.Require().NoError(err)
	s.staging = st
	s.store = jobs.NewMemoryStore()
	s.jobs = jobs.NewManager(jobs.StoreSet{appctx.API: s.store}, nil)
	s.ctx = appctx.With(context.Background(), appctx.API)
}

func (s *ProcessTestSuite) service(exec executor.Executor) *Process {
	return NewProcessService(s.staging, s.jobs, exec, params.Defaults(params.DefaultCapabilities()))
}

func (s *ProcessTestSuite) request(overlay string) ProcessRequest {
	return ProcessRequest{
		Source: &Upload{Name: "face.jpg", Reader: strings.NewReader("source-bytes")},
		Target: &Upload{Name: "scene.png", Reader: strings.NewReader("target-bytes")},
		Params: overlay,
	}
}

// writesOutput is an executor that produces the output file
func writesOutput(seen *params.Params) executor.Executor {
	return executor.Func(func(_ context.Context, p params.Params) error {
		if seen != nil {
			*seen = p
		}
		return os.WriteFile(p.OutputPath, []byte("swapped"), 0o600)
	})
}

func (s *ProcessTestSuite) uploads() []os.DirEntry {
	entries, err := os.ReadDir(s.staging.UploadDir())
	s.Require().NoError(err)
	return entries
}

func (s *ProcessTestSuite) requireKind(err error, kind ErrorKind) *Error {
	s.Require().Error(err)
	var perr *Error
	s.Require().True(errors.As(err, &perr), "expected *Error, got %v", err)
	s.Require().Equal(kind, perr.Kind, "unexpected kind for %v", err)
	return perr
}

func (s *ProcessTestSuite) TestSuccess() {
	var seen params.Params
	res, err := s.service(writesOutput(&seen)).Process(s.ctx, s.request(""))
	s.Require().NoError(err)

	s.True(strings.HasPrefix(res.JobID, "api-"))
	s.Equal(staging.RoleOutput, res.Output.Role)
	data, err := os.ReadFile(res.Output.Path)
	s.Require().NoError(err)
	s.Equal("swapped", string(data))

	s.Require().Len(seen.SourcePaths, 1)
	s.True(strings.HasPrefix(seen.SourcePaths[0], s.staging.UploadDir()))
	s.Equal(".jpg", filepath.Ext(seen.SourcePaths[0]))
	s.Equal(res.Output.Path, seen.OutputPath)
	s.Equal(filepath.Join(s.staging.OutputDir(), "output_"+filepath.Base(seen.TargetPath)), seen.OutputPath)
	s.Equal([]string{"face_swapper"}, seen.Processors)

	s.Empty(s.uploads(), "staged inputs must be removed")

	job, err := s.jobs.Get(s.ctx, res.JobID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusCompleted, job.Status)
}

func (s *ProcessTestSuite) TestMissingUpload() {
	called := false
	exec := executor.Func(func(context.Context, params.Params) error {
		called = true
		return nil
	})

	req := s.request("")
	req.Target = nil
	_, err := s.service(exec).Process(s.ctx, req)
	s.requireKind(err, KindBadRequest)
	s.ErrorIs(err, ErrMissingUploads)

	s.False(called)
	s.Empty(s.uploads())
	jobsList, err := s.jobs.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(jobsList)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func (s *ProcessTestSuite) TestStagingFailure() {
	req := s.request("")
	req.Target = &Upload{Name: "scene.png", Reader: failingReader{}}

	_, err := s.service(writesOutput(nil)).Process(s.ctx, req)
	s.requireKind(err, KindStagingFailure)
	s.Empty(s.uploads(), "the staged source and the partial target must be removed")
}

func (s *ProcessTestSuite) TestExecutorFailureNamesRunStage() {
	exec := executor.Func(func(context.Context, params.Params) error {
		return errors.New("no face detected")
	})

	_, err := s.service(exec).Process(s.ctx, s.request(""))
	perr := s.requireKind(err, KindJobStageFailure)
	s.Equal(jobs.StageRun, perr.Stage)
	s.Contains(err.Error(), "run")
	s.Empty(s.uploads())

	job, err := s.jobs.Get(s.ctx, perr.JobID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusFailed, job.Status)
}

func (s *ProcessTestSuite) TestOutputMissing() {
	exec := executor.Func(func(context.Context, params.Params) error { return nil })

	_, err := s.service(exec).Process(s.ctx, s.request(""))
	s.requireKind(err, KindOutputMissing)
	s.Empty(s.uploads())
}

func (s *ProcessTestSuite) TestOverlay() {
	var seen params.Params
	overlay := `{"face_swapper_model":"simswap_256","output_image_quality":95,"target_path":"/etc/passwd","lip_syncer_model":"wav2lip"}`

	res, err := s.service(writesOutput(&seen)).Process(s.ctx, s.request(overlay))
	s.Require().NoError(err)

	s.Equal("simswap_256", seen.FaceSwapperModel)
	s.Equal(95, seen.OutputImageQuality)
	s.Equal("wav2lip", seen.Extra["lip_syncer_model"])
	s.NotEqual("/etc/passwd", seen.TargetPath)
	s.ElementsMatch([]string{"face_swapper_model", "output_image_quality", "lip_syncer_model"}, res.Applied)
	s.Require().Len(res.Rejected, 1)
	s.Equal(params.KeyTargetPath, res.Rejected[0].Key)
}

func (s *ProcessTestSuite) TestOverlayCannotRedirectPaths() {
	var seen params.Params
	overlay := `{"ui_layouts":["default","--output-path","/etc/evil"],"temp_path":"/etc","face_detector_score":null}`

	res, err := s.service(writesOutput(&seen)).Process(s.ctx, s.request(overlay))
	s.Require().NoError(err)

	defaults := params.Defaults(params.DefaultCapabilities())
	s.Equal(defaults.UILayouts, seen.UILayouts)
	s.Equal(defaults.FaceDetectorScore, seen.FaceDetectorScore)
	s.NotContains(seen.Extra, "temp_path")
	s.Equal(res.Output.Path, seen.OutputPath)
	s.Empty(res.Applied)
	s.Len(res.Rejected, 3)
}

func (s *ProcessTestSuite) TestMalformedOverlayIsIgnored() {
	var seen params.Params
	_, err := s.service(writesOutput(&seen)).Process(s.ctx, s.request(`{"face_swapper_model":`))
	s.Require().NoError(err)
	s.Equal(params.Defaults(params.DefaultCapabilities()).FaceSwapperModel, seen.FaceSwapperModel)
}

func (s *ProcessTestSuite) TestCancelledRequest() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service(writesOutput(nil)).Process(ctx, s.request(""))
	perr := s.requireKind(err, KindJobStageFailure)
	s.Equal(jobs.StageRun, perr.Stage)
	s.ErrorIs(err, context.Canceled)
	s.Empty(s.uploads())
}

func (s *ProcessTestSuite) TestConcurrentRequestsDoNotShareParameters() {
	const n = 8
	var mu sync.Mutex
	seen := make(map[string]string)
	exec := executor.Func(func(_ context.Context, p params.Params) error {
		mu.Lock()
		seen[p.TargetPath] = p.FaceSwapperModel
		mu.Unlock()
		return os.WriteFile(p.OutputPath, []byte("ok"), 0o600)
	})
	svc := s.service(exec)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = fmt.Sprintf("model_%d", i)
		wg.Add(1)
		go func(model string) {
			defer wg.Done()
			_, err := svc.Process(s.ctx, s.request(fmt.Sprintf(`{"face_swapper_model":%q}`, model)))
			errs <- err
		}(names[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.Len(seen, n, "every request stages its own target")
	got := make([]string, 0, n)
	for _, m := range seen {
		got = append(got, m)
	}
	s.ElementsMatch(names, got)
}

func (s *ProcessTestSuite) TestKindOf() {
	s.Equal(KindInternal, KindOf(errors.New("plain")))
	s.Equal(KindOutputMissing, KindOf(fmt.Errorf("wrapped: %w", newError(KindOutputMissing, "", errors.New("gone")))))
	s.Equal("job_stage_failure", KindJobStageFailure.String())
	s.Equal("unknown", ErrorKind(99).String())
}
