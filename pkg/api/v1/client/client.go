// Package client provides the API client for interacting with the faceswap API
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/types"
	"github.com/celestiaorg/faceswap/pkg/api/v1/handlers"
	"github.com/celestiaorg/faceswap/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests. Processing a video
// can take minutes.
const DefaultTimeout = 10 * time.Minute

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (types.HealthResponse, error)

	// Process
	Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error)

	// Job Endpoints
	ListJobs(ctx context.Context, opts *models.ListOptions) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (models.Job, error)
}

var _ Client = &APIClient{}

// File is one file sent to the process endpoint
type File struct {
	Name    string
	Content []byte
}

// ProcessRequest is the input of Process
type ProcessRequest struct {
	Source File
	Target File
	// Params are parameter overrides sent as the params form field
	Params map[string]any
}

// ProcessResponse is the output file returned by the server
type ProcessResponse struct {
	JobID    string
	Filename string
	Content  []byte
}

// Error is a non-2xx response of the API
type Error struct {
	StatusCode int
	Body       types.ErrorResponse
	Raw        string
}

func (e *Error) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Raw)
}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate the base URL
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Accept", "application/json")
	return agent, nil
}

// apiError builds an *Error from a failed response
func apiError(statusCode int, body []byte) error {
	e := &Error{StatusCode: statusCode, Raw: string(body)}
	_ = json.Unmarshal(body, &e.Body)
	return e
}

// executeRequest creates an agent, sends the request, and decodes the JSON response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, v interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint)
	if err != nil {
		return err
	}

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return apiError(statusCode, body)
	}

	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (types.HealthResponse, error) {
	var response types.HealthResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.HealthCheckURL(), &response); err != nil {
		return types.HealthResponse{}, err
	}
	return response, nil
}

// Process uploads source and target and returns the produced file
func (c *APIClient) Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	if len(req.Source.Content) == 0 || len(req.Target.Content) == 0 {
		return nil, errors.New("source and target content are required")
	}

	agent, err := c.createAgent(ctx, http.MethodPost, routes.ProcessURL())
	if err != nil {
		return nil, err
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	if len(req.Params) > 0 {
		raw, err := json.Marshal(req.Params)
		if err != nil {
			return nil, fmt.Errorf("error encoding params: %w", err)
		}
		args.Set(handlers.FieldParams, string(raw))
	}

	agent.FileData(
		&fiber.FormFile{Fieldname: handlers.FieldSource, Name: req.Source.Name, Content: req.Source.Content},
		&fiber.FormFile{Fieldname: handlers.FieldTarget, Name: req.Target.Name, Content: req.Target.Content},
	)
	agent.MultipartForm(args)

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, apiError(statusCode, body)
	}

	content := make([]byte, len(body))
	copy(content, body)
	return &ProcessResponse{
		JobID:    string(resp.Header.Peek(handlers.HeaderJobID)),
		Filename: attachmentName(string(resp.Header.Peek(fiber.HeaderContentDisposition))),
		Content:  content,
	}, nil
}

// getQueryParams creates url.Values from ListOptions
func getQueryParams(opts *models.ListOptions) url.Values {
	q := url.Values{}
	if opts == nil {
		return q
	}

	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", opts.Offset))
	}
	if opts.Status != nil {
		q.Set("status", opts.Status.String())
	}
	return q
}

// ListJobs lists the jobs run by the server
func (c *APIClient) ListJobs(ctx context.Context, opts *models.ListOptions) ([]models.Job, error) {
	var response types.JobListResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.ListJobsURL(getQueryParams(opts)), &response); err != nil {
		return nil, err
	}
	return response.Rows, nil
}

// GetJob retrieves a job by id
func (c *APIClient) GetJob(ctx context.Context, id string) (models.Job, error) {
	var job models.Job
	if err := c.executeRequest(ctx, http.MethodGet, routes.GetJobURL(id), &job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}
