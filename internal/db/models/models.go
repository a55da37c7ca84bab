// Package models defines the persisted records of the service
package models

const (
	// DefaultLimit is the max number of rows that are retrieved per listing call
	DefaultLimit = 50
)

// ListOptions represents pagination and filtering options for list operations
type ListOptions struct {
	Limit  int        `json:"limit"`            // Number of items to return
	Offset int        `json:"offset"`           // Number of items to skip
	Status *JobStatus `json:"status,omitempty"` // Filter by job status
}

// Normalize fills in the default limit and clamps negative values
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 || o.Limit > DefaultLimit {
		o.Limit = DefaultLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}
