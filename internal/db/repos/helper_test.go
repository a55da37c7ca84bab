package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/params"
)

// DBRepositoryTestSuite provides a base test suite for repository tests
type DBRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	jobRepo *JobRepository
	seq     int
}

func (s *DBRepositoryTestSuite) SetupTest() {
	// a named in-memory database per test keeps tests isolated
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(s.T().Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")

	err = db.AutoMigrate(&models.Job{})
	require.NoError(s.T(), err, "Failed to run database migrations")

	s.db = db
	s.jobRepo = NewJobRepository(s.db)
	s.ctx = context.Background()
}

func (s *DBRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *DBRepositoryTestSuite) createTestJob(status models.JobStatus) *models.Job {
	s.seq++
	p := params.Defaults(params.DefaultCapabilities())
	p.TargetPath = "/tmp/target.png"
	job := &models.Job{
		ID:         fmt.Sprintf("cli-test-%d", s.seq),
		AppContext: "cli",
		Status:     status,
		Steps:      []models.Step{{Parameters: p}},
		CreatedAt:  time.Now().Add(time.Duration(s.seq) * time.Second),
	}
	err := s.jobRepo.Create(s.ctx, job)
	s.Require().NoError(err)
	return job
}
