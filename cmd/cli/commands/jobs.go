package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/db/models"
)

// jobOutput represents the filtered output for a job
type jobOutput struct {
	ID         string `json:"id"`
	AppContext string `json:"app_context"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs []jobOutput `json:"jobs"`
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}

func init() {
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(getJobCmd)

	jobsCmd.PersistentFlags().Bool(flagRemote, false, "Query the API server instead of the local job database")

	listJobsCmd.Flags().IntP("limit", "l", models.DefaultLimit, "Limit the number of jobs returned")
	listJobsCmd.Flags().Int("offset", 0, "Number of jobs to skip")
	listJobsCmd.Flags().String("status", "", "Filter jobs by status")

	getJobCmd.Flags().StringP("id", "i", "", "Job ID to fetch")
	_ = getJobCmd.MarkFlagRequired("id")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Show swap jobs",
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		status, _ := cmd.Flags().GetString("status")
		remote, _ := cmd.Flags().GetBool(flagRemote)

		opts := &models.ListOptions{Limit: limit, Offset: offset}
		if status != "" {
			jobStatus, err := models.ParseJobStatus(status)
			if err != nil {
				return err
			}
			opts.Status = &jobStatus
		}

		var list []models.Job
		var err error
		if remote {
			list, err = apiClient.ListJobs(cmd.Context(), opts)
		} else {
			err = withLocalJobs(cmd.Context(), func(ctx context.Context, env *localEnv) error {
				list, err = env.jobs.List(ctx, opts)
				return err
			})
		}
		if err != nil {
			return fmt.Errorf("error fetching jobs: %w", err)
		}

		output := jobListOutput{Jobs: make([]jobOutput, len(list))}
		for i, job := range list {
			output.Jobs[i] = toJobOutput(job)
		}
		return printJSON(cmd.OutOrStdout(), output)
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a job by ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetString("id")
		remote, _ := cmd.Flags().GetBool(flagRemote)

		var job models.Job
		if remote {
			var err error
			if job, err = apiClient.GetJob(cmd.Context(), id); err != nil {
				return fmt.Errorf("error fetching job: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), job)
		}

		err := withLocalJobs(cmd.Context(), func(ctx context.Context, env *localEnv) error {
			j, err := env.jobs.Get(ctx, id)
			if err != nil {
				return err
			}
			job = *j
			return nil
		})
		if err != nil {
			return fmt.Errorf("error fetching job: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), job)
	},
}

func withLocalJobs(ctx context.Context, fn func(context.Context, *localEnv) error) error {
	env, err := openLocal()
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(appctx.With(ctx, appctx.CLI), env)
}

func toJobOutput(job models.Job) jobOutput {
	return jobOutput{
		ID:         job.ID,
		AppContext: job.AppContext,
		Status:     job.Status.String(),
		Error:      job.Error,
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
	}
}
