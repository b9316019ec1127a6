package jobs

import "context"

// RunStore records job_runs rows.
type RunStore interface {
	StartRun(ctx context.Context, businessID, jobType string) (string, error)
	FinishRun(ctx context.Context, runID, status string, details []byte) error
	ListBusinesses(ctx context.Context) ([]string, error)
}
