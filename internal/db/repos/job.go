// Package repos provides gorm backed repositories
package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/celestiaorg/faceswap/internal/db/models"
)

// JobRepository provides access to job-related database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job. An existing id yields models.ErrJobExists.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check job id: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", models.ErrJobExists, job.ID)
		}
		if err := tx.Create(job).Error; err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		return nil
	})
}

// Get retrieves a job by its id
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// Update writes every field of an existing job
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", job.ID).
		Select("*").
		Updates(job)
	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrJobNotFound, job.ID)
	}
	return nil
}

// List returns jobs, newest first
func (r *JobRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Job, error) {
	if opts == nil {
		opts = &models.ListOptions{}
	}
	opts.Normalize()

	qry := r.db.WithContext(ctx).Model(&models.Job{})
	if opts.Status != nil && *opts.Status != models.JobStatusUnknown {
		qry = qry.Where("status = ?", *opts.Status)
	}

	var jobs []models.Job
	err := qry.
		Limit(opts.Limit).Offset(opts.Offset).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Count returns the number of jobs with the given status, or all jobs when
// status is unknown
func (r *JobRepository) Count(ctx context.Context, status models.JobStatus) (int64, error) {
	var count int64
	qry := r.db.WithContext(ctx).Model(&models.Job{})
	if status != models.JobStatusUnknown {
		qry = qry.Where("status = ?", status)
	}
	if err := qry.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}
