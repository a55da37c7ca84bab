// Package handlers provides HTTP request handling
package handlers

// Process error titles and messages
const (
	ErrMsgMissingFiles      = "Missing required files"
	ErrMsgFilesRequired     = "Both source and target files are required"
	ErrMsgFileSavingFailed  = "File saving failed"
	ErrMsgSaveUploadsFailed = "Failed to save uploaded files"
	ErrMsgOutputNotFound    = "Output not found"
	ErrMsgOutputNotFoundMsg = "Processing completed but output file not found"
	ErrMsgJobStageFailed    = "Job stage failed"
	ErrMsgProcessingError   = "Processing error"
)

// Job error messages
const (
	ErrMsgInvalidParams     = "Invalid parameters"
	ErrMsgJobIDRequired     = "Job id is required"
	ErrMsgJobNotFound       = "Job not found"
	ErrMsgJobGetFailed      = "Failed to get job"
	ErrMsgJobListFailed     = "Failed to list jobs"
	ErrMsgJobStatusInvalid  = "Invalid job status"
	ErrMsgNegativePageParam = "Limit and offset must not be negative"
)
