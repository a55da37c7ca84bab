package handlers

import "github.com/celestiaorg/faceswap/internal/db/models"

const (
	// MaxPageSize is the maximum allowed page size
	MaxPageSize = 1000
)

// getPaginationOptions returns a ListOptions struct with validated pagination parameters
func getPaginationOptions(limit, offset int) (*models.ListOptions, bool) {
	if limit < 0 || offset < 0 {
		return nil, false
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	opts := &models.ListOptions{Limit: limit, Offset: offset}
	opts.Normalize()
	return opts, true
}
