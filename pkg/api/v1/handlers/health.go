package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/faceswap/internal/services"
	"github.com/celestiaorg/faceswap/internal/staging"
	"github.com/celestiaorg/faceswap/internal/types"
)

// HealthHandler reports service health
type HealthHandler struct {
	staging *staging.Manager
	stats   *services.JobStats
}

// NewHealthHandler creates a new health handler. stats may be nil.
func NewHealthHandler(st *staging.Manager, stats *services.JobStats) *HealthHandler {
	return &HealthHandler{staging: st, stats: stats}
}

// Check returns the status of the staging directories
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := types.HealthResponse{Status: "healthy"}
	if h.staging != nil {
		resp.UploadDir = h.staging.UploadDirExists()
		resp.OutputDir = h.staging.OutputDirExists()
	}
	if h.stats != nil {
		counts := h.stats.Snapshot()
		resp.Jobs = &counts
	}
	return c.JSON(resp)
}
