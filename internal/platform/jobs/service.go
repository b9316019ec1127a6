package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"dotplatform/internal/domain/payroll"
)

const (
	JobPayrollRun = "payroll_run"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// PayrollRunner issues statements for a whole business and month.
type PayrollRunner interface {
	RunPayroll(ctx context.Context, businessID string, year, month int) (payroll.RunSummary, error)
}

type Service struct {
	runs     RunStore
	payroll  PayrollRunner
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	queue    chan job
}

type job struct {
	Type       string
	BusinessID string
	Run        func(context.Context) (any, error)
}

// New builds the job queue. A zero interval disables the monthly scheduler.
func New(runs RunStore, runner PayrollRunner, queueSize int, interval time.Duration, loc *time.Location) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	if loc == nil {
		loc = payroll.DefaultLocation()
	}
	return &Service{
		runs:     runs,
		payroll:  runner,
		interval: interval,
		loc:      loc,
		now:      time.Now,
		queue:    make(chan job, queueSize),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.interval > 0 && s.payroll != nil {
		go s.schedulePayrollRuns(ctx, s.interval)
	}
}

// Enqueue reports false when the queue is full and the job was dropped.
func (s *Service) Enqueue(jobType, businessID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, BusinessID: businessID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "businessId", businessID)
		return false
	}
}

func (s *Service) EnqueuePayrollRun(businessID string, year, month int) bool {
	return s.Enqueue(JobPayrollRun, businessID, func(ctx context.Context) (any, error) {
		return s.payroll.RunPayroll(ctx, businessID, year, month)
	})
}

func (s *Service) RunNow(ctx context.Context, jobType, businessID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, BusinessID: businessID, Run: run})
}

// RunPayrollNow runs a payroll job on the caller's goroutine and records it
// the same way as a queued run.
func (s *Service) RunPayrollNow(ctx context.Context, businessID string, year, month int) (payroll.RunSummary, error) {
	out, err := s.RunNow(ctx, JobPayrollRun, businessID, func(ctx context.Context) (any, error) {
		return s.payroll.RunPayroll(ctx, businessID, year, month)
	})
	summary, _ := out.(payroll.RunSummary)
	return summary, err
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "businessId", j.BusinessID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.runs != nil {
		id, err := s.runs.StartRun(ctx, j.BusinessID, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(runDetails(details, err))
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.runs.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func runDetails(details any, err error) any {
	if err == nil {
		return details
	}
	return map[string]any{"result": details, "error": err.Error()}
}

// previousMonth is the pay month a run started at now should settle.
func previousMonth(now time.Time, loc *time.Location) (int, int) {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
	return first.Year(), int(first.Month())
}

func (s *Service) schedulePayrollRuns(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueScheduledRuns(ctx)
		}
	}
}

func (s *Service) enqueueScheduledRuns(ctx context.Context) {
	if s.runs == nil {
		return
	}
	businesses, err := s.runs.ListBusinesses(ctx)
	if err != nil {
		slog.Warn("payroll scheduler business lookup failed", "err", err)
		return
	}
	year, month := previousMonth(s.now(), s.loc)
	for _, businessID := range businesses {
		s.EnqueuePayrollRun(businessID, year, month)
	}
}
