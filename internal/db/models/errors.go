package models

import "errors"

var (
	// ErrJobExists is returned when a job id is already taken
	ErrJobExists = errors.New("job already exists")
	// ErrJobNotFound is returned when no job has the requested id
	ErrJobNotFound = errors.New("job not found")
)
