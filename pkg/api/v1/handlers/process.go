package handlers

import (
	"errors"
	"mime/multipart"
	"path/filepath"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/services"
	"github.com/celestiaorg/faceswap/internal/types"
)

// Multipart field names of the process endpoint
const (
	FieldSource = "source"
	FieldTarget = "target"
	FieldParams = "params"
)

// HeaderJobID carries the id of the job that served a process request
const HeaderJobID = "X-Job-ID"

// ProcessHandler handles swap requests
type ProcessHandler struct {
	service *services.Process
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(service *services.Process) *ProcessHandler {
	return &ProcessHandler{service: service}
}

// Process runs the uploaded source and target through a job and streams the
// output back as an attachment
func (h *ProcessHandler) Process(c *fiber.Ctx) error {
	source, err := c.FormFile(FieldSource)
	if err != nil {
		return h.missingFiles(c)
	}
	target, err := c.FormFile(FieldTarget)
	if err != nil {
		return h.missingFiles(c)
	}
	logger.InfoWithFields("Files received", map[string]interface{}{
		"source": source.Filename,
		"target": target.Filename,
	})

	sourceUpload, closeSource, err := openUpload(source)
	if err != nil {
		return h.saveFailed(c, err)
	}
	defer closeSource()
	targetUpload, closeTarget, err := openUpload(target)
	if err != nil {
		return h.saveFailed(c, err)
	}
	defer closeTarget()

	res, err := h.service.Process(c.UserContext(), services.ProcessRequest{
		Source: sourceUpload,
		Target: targetUpload,
		Params: c.FormValue(FieldParams),
	})
	if err != nil {
		return h.processError(c, err)
	}

	c.Set(HeaderJobID, res.JobID)
	return c.Download(res.Output.Path, filepath.Base(res.Output.Path))
}

func openUpload(fh *multipart.FileHeader) (*services.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{Name: fh.Filename, Reader: f}, func() { _ = f.Close() }, nil
}

func (h *ProcessHandler) missingFiles(c *fiber.Ctx) error {
	logger.Warn("Missing required files in request")
	return c.Status(fiber.StatusBadRequest).
		JSON(types.ErrResponse(ErrMsgMissingFiles, ErrMsgFilesRequired))
}

func (h *ProcessHandler) saveFailed(c *fiber.Ctx, err error) error {
	logger.Errorf("Failed to open uploaded file: %v", err)
	return c.Status(fiber.StatusInternalServerError).
		JSON(types.ErrResponse(ErrMsgFileSavingFailed, ErrMsgSaveUploadsFailed))
}

// processError maps a service failure to a status code and error body
func (h *ProcessHandler) processError(c *fiber.Ctx, err error) error {
	var perr *services.Error
	if errors.As(err, &perr) && perr.JobID != "" {
		c.Set(HeaderJobID, perr.JobID)
	}

	kind := services.KindOf(err)
	logger.ErrorWithFields("Processing failed", map[string]interface{}{
		"kind":  kind.String(),
		"error": err.Error(),
	})

	switch kind {
	case services.KindBadRequest:
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrResponse(ErrMsgMissingFiles, ErrMsgFilesRequired))
	case services.KindStagingFailure:
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrResponse(ErrMsgFileSavingFailed, ErrMsgSaveUploadsFailed))
	case services.KindJobStageFailure:
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrResponse(ErrMsgJobStageFailed, err.Error()))
	case services.KindOutputMissing:
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrResponse(ErrMsgOutputNotFound, ErrMsgOutputNotFoundMsg))
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrResponse(ErrMsgProcessingError, err.Error()))
	}
}
