// Package types holds the request and response bodies of the API
package types

import "github.com/celestiaorg/faceswap/internal/db/models"

// ErrorResponse represents an error response
// Example: {"error":"Missing required files","message":"Both source and target files are required"}
type ErrorResponse struct {
	// Short error title
	Error string `json:"error"`

	// Human readable detail
	Message string `json:"message"`
}

// JobCounts summarises job outcomes since the server started
type JobCounts struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// HealthResponse represents the health check response
// Example: {"status":"healthy","upload_dir":true,"output_dir":true}
type HealthResponse struct {
	// Always "healthy" while the server answers
	Status string `json:"status"`

	// Whether the upload staging directory exists
	UploadDir bool `json:"upload_dir"`

	// Whether the output staging directory exists
	OutputDir bool `json:"output_dir"`

	// Job outcome counters since start, omitted when not tracked
	Jobs *JobCounts `json:"jobs,omitempty"`
}

// PaginationResponse represents pagination information for list endpoints
// Example: {"total":42,"limit":10,"offset":0}
type PaginationResponse struct {
	// Number of items in this page
	Total int `json:"total"`

	// Maximum number of items per page
	Limit int `json:"limit"`

	// Number of items skipped from the beginning of the result set
	Offset int `json:"offset"`
}

// ListResponse is a generic response for list endpoints
type ListResponse[T any] struct {
	// Array of resource items
	Rows []T `json:"rows"`

	// Pagination information for the result set
	Pagination PaginationResponse `json:"pagination"`
}

// JobListResponse is the response of the job list endpoint
type JobListResponse = ListResponse[models.Job]

// ErrResponse builds an ErrorResponse
func ErrResponse(title, message string) ErrorResponse {
	return ErrorResponse{Error: title, Message: message}
}
