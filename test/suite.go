package test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/db/repos"
	"github.com/celestiaorg/faceswap/internal/events"
	"github.com/celestiaorg/faceswap/internal/jobs"
	"github.com/celestiaorg/faceswap/internal/services"
	"github.com/celestiaorg/faceswap/internal/staging"
	"github.com/celestiaorg/faceswap/pkg/api/v1/client"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// DefaultOutput is what the test pipeline writes by default
var DefaultOutput = []byte("swapped")

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - File-based job database
//   - Staging directories in a temp dir
//   - Real API server
//   - Real API client
//   - A test pipeline instead of the external one
type Suite struct {
	t *testing.T

	// Server components
	App    *fiber.App
	Server *httptest.Server

	// Client components
	APIClient client.Client

	// Database components
	DB      *gorm.DB
	JobRepo *repos.JobRepository

	// Job components
	APIJobs  *jobs.MemoryStore
	Jobs     *jobs.Manager
	Bus      *events.Bus
	Stats    *services.JobStats
	Staging  *staging.Manager
	Pipeline *Pipeline

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	// Cleanup function
	cleanup func()
}

// NewSuite creates a new test suite.
// The suite must be cleaned up after use by calling Cleanup.
func NewSuite(t *testing.T) *Suite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	suite := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
		Pipeline:   NewPipeline(DefaultOutput),
	}

	suite.cleanup = func() {
		if suite.Server != nil {
			suite.Server.Close()
		}
		if suite.cancelFunc != nil {
			suite.cancelFunc()
		}
	}

	SetupTestDB(suite)
	SetupStaging(suite)
	SetupJobs(suite)
	SetupServer(suite)

	return suite
}

// SetupStaging creates staging directories under a temp dir
func SetupStaging(suite *Suite) {
	dir := suite.t.TempDir()
	st, err := staging.NewManager(filepath.Join(dir, "uploads"), filepath.Join(dir, "outputs"))
	suite.Require().NoError(err, "Failed to create staging directories")
	suite.Staging = st
}

// SetupJobs creates the job manager: API jobs in memory, CLI jobs in the
// database
func SetupJobs(suite *Suite) {
	suite.APIJobs = jobs.NewMemoryStore()
	suite.Bus = events.NewBus(events.EventChannelSize)
	suite.Stats = services.NewJobStats(suite.Bus)
	suite.Bus.Start(suite.ctx)
	suite.Jobs = jobs.NewManager(jobs.StoreSet{
		appctx.API: suite.APIJobs,
		appctx.CLI: suite.JobRepo,
	}, suite.Bus)
}

// Cleanup tears down the test suite, releasing all resources.
// This should be deferred immediately after creating the suite.
func (s *Suite) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// T returns the testing.T instance for this suite
func (s *Suite) T() *testing.T {
	return s.t
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
// This is a convenience method to avoid passing t around.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// Uploads returns the files currently in the upload staging directory
func (s *Suite) Uploads() []os.DirEntry {
	entries, err := os.ReadDir(s.Staging.UploadDir())
	s.Require().NoError(err)
	return entries
}

// Retry retries a function until it succeeds or the number of retries is reached.
func (s *Suite) Retry(fn func() error, retries int, interval time.Duration) (err error) {
	for i := 0; i < retries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return
}
