package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/faceswap/internal/db/models"
	"github.com/celestiaorg/faceswap/internal/jobs"
	"github.com/celestiaorg/faceswap/internal/types"
)

// JobHandler exposes the jobs run by this server
type JobHandler struct {
	jobs *jobs.Manager
}

// NewJobHandler creates a new job handler
func NewJobHandler(manager *jobs.Manager) *JobHandler {
	return &JobHandler{jobs: manager}
}

// ListJobs handles the request to list jobs, newest first
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	opts, ok := getPaginationOptions(c.QueryInt("limit", models.DefaultLimit), c.QueryInt("offset", 0))
	if !ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrResponse(ErrMsgInvalidParams, ErrMsgNegativePageParam))
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseJobStatus(statusStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(types.ErrResponse(ErrMsgJobStatusInvalid, err.Error()))
		}
		opts.Status = &status
	}

	list, err := h.jobs.List(c.UserContext(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrResponse(ErrMsgJobListFailed, err.Error()))
	}

	return c.JSON(types.JobListResponse{
		Rows: list,
		Pagination: types.PaginationResponse{
			Total:  len(list),
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	})
}

// GetJob returns a single job
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrResponse(ErrMsgInvalidParams, ErrMsgJobIDRequired))
	}

	job, err := h.jobs.Get(c.UserContext(), id)
	if errors.Is(err, models.ErrJobNotFound) {
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrResponse(ErrMsgJobNotFound, err.Error()))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrResponse(ErrMsgJobGetFailed, err.Error()))
	}
	return c.JSON(job)
}
