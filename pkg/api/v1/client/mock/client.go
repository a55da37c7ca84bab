// Package mock provides a recording client.Client for command tests
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/types"
	"github.com/celestiaorg/faceswap/pkg/api/v1/client"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	HealthCheckFn func(ctx context.Context) (types.HealthResponse, error)
	ProcessFn     func(ctx context.Context, req client.ProcessRequest) (*client.ProcessResponse, error)
	ListJobsFn    func(ctx context.Context, opts *models.ListOptions) ([]models.Job, error)
	GetJobFn      func(ctx context.Context, id string) (models.Job, error)

	mu sync.Mutex

	// Call tracking for verification
	HealthCheckCalls int
	ProcessCalls     []client.ProcessRequest
	ListJobsCalls    []*models.ListOptions
	GetJobCalls      []string
}

// Ensure MockClient implements Client interface
var _ client.Client = (*MockClient)(nil)

// HealthCheck mocks the HealthCheck method
func (m *MockClient) HealthCheck(ctx context.Context) (types.HealthResponse, error) {
	m.mu.Lock()
	m.HealthCheckCalls++
	m.mu.Unlock()

	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return types.HealthResponse{Status: "healthy", UploadDir: true, OutputDir: true}, nil
}

// Process mocks the Process method. By default it echoes the target back.
func (m *MockClient) Process(ctx context.Context, req client.ProcessRequest) (*client.ProcessResponse, error) {
	m.mu.Lock()
	m.ProcessCalls = append(m.ProcessCalls, req)
	m.mu.Unlock()

	if m.ProcessFn != nil {
		return m.ProcessFn(ctx, req)
	}
	return &client.ProcessResponse{
		JobID:    "api-mock",
		Filename: req.Target.Name,
		Content:  req.Target.Content,
	}, nil
}

// ListJobs mocks the ListJobs method
func (m *MockClient) ListJobs(ctx context.Context, opts *models.ListOptions) ([]models.Job, error) {
	m.mu.Lock()
	m.ListJobsCalls = append(m.ListJobsCalls, opts)
	m.mu.Unlock()

	if m.ListJobsFn != nil {
		return m.ListJobsFn(ctx, opts)
	}
	return []models.Job{}, nil
}

// GetJob mocks the GetJob method
func (m *MockClient) GetJob(ctx context.Context, id string) (models.Job, error) {
	m.mu.Lock()
	m.GetJobCalls = append(m.GetJobCalls, id)
	m.mu.Unlock()

	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}
	return models.Job{
		ID:         id,
		AppContext: "api",
		Status:     models.JobStatusCompleted,
		CreatedAt:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}
