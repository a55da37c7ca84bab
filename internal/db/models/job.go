package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/celestiaorg/faceswap/internal/params"
)

const (
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
)

// JobStatus represents the current state of a job
type JobStatus int

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusCreated indicates the job exists and may receive its step
	JobStatusCreated
	// JobStatusQueued indicates the job was submitted and waits to run
	JobStatusQueued
	// JobStatusRunning indicates the executor is working on the job
	JobStatusRunning
	// JobStatusCompleted indicates the executor reported success
	JobStatusCompleted
	// JobStatusFailed indicates the executor failed or was not reachable
	JobStatusFailed
)

var jobStatusNames = []string{
	"unknown",
	"created",
	"queued",
	"running",
	"completed",
	"failed",
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}
	return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
}

func (s JobStatus) String() string {
	if s < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}

// IsTerminal reports whether no further transition is possible
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// Step is the parameter set for one unit of work of a job
type Step struct {
	Parameters params.Params `json:"parameters"`
}

// MarshalJSON includes the extra parameters next to the named ones
func (s Step) MarshalJSON() ([]byte, error) {
	items, err := s.Parameters.Items()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Parameters map[string]any `json:"parameters"`
	}{Parameters: items})
}

// UnmarshalJSON restores named and extra parameters
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw struct {
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := params.FromItems(raw.Parameters)
	if err != nil {
		return err
	}
	s.Parameters = p
	return nil
}

// Job is one client requested transformation
type Job struct {
	ID          string     `json:"id" gorm:"primaryKey;size:128"`
	AppContext  string     `json:"app_context" gorm:"size:16;index"`
	Status      JobStatus  `json:"status" gorm:"index"`
	Steps       []Step     `json:"steps" gorm:"serializer:json;type:text"`
	Error       string     `json:"error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a copy that shares no mutable state with j
func (j *Job) Clone() *Job {
	c := *j
	c.Steps = make([]Step, len(j.Steps))
	for i, s := range j.Steps {
		c.Steps[i] = Step{Parameters: s.Parameters.Clone()}
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
