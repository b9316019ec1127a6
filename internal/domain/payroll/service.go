package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dotplatform/internal/platform/workerpool"
)

type Service struct {
	store    StoreAPI
	notifier Notifier
	pool     *workerpool.WorkerPool
	opts     Options
}

// NewService wires the calculation pipeline to its store. notifier and pool
// are optional; without a pool batches run sequentially.
func NewService(store StoreAPI, notifier Notifier, pool *workerpool.WorkerPool, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = DefaultLocation()
	}
	if opts.PremiumPolicy == "" {
		opts.PremiumPolicy = PremiumPolicyStack
	}
	return &Service{store: store, notifier: notifier, pool: pool, opts: opts}
}

// Calculate validates the input, runs the pipeline and validates the result.
// Validation problems are reported in the Calculation, never as an error.
func (s *Service) Calculate(ctx context.Context, in PayrollInput) (Calculation, error) {
	if err := ctx.Err(); err != nil {
		return Calculation{}, err
	}
	calc := Calculation{InputValidation: ValidatePayrollInput(in)}
	calc.Result = Compute(in, s.opts)
	calc.ResultValidation = ValidatePayrollResult(calc.Result)

	attrs := []any{
		"businessId", in.BusinessID,
		"userId", in.UserID,
		"period", calc.Result.Period.Key(),
		"wageType", calc.Result.WageType,
		"grossPay", calc.Result.Summary.GrossPay,
		"netPay", calc.Result.Summary.NetPay,
		"valid", calc.Valid(),
	}
	if calc.Valid() {
		slog.Info("payroll calculated", attrs...)
	} else {
		attrs = append(attrs,
			"inputErrors", calc.InputValidation.Errors,
			"resultErrors", calc.ResultValidation.Errors,
		)
		slog.Warn("payroll calculated", attrs...)
	}
	return calc, nil
}

// CalculateForPeriod loads the stored profile and the month's attendance
// records, then runs Calculate.
func (s *Service) CalculateForPeriod(ctx context.Context, businessID, userID string, year, month int) (Calculation, error) {
	if year < MinValidYear || year > MaxValidYear || month < 1 || month > 12 {
		return Calculation{}, fmt.Errorf("%w: period %04d-%02d out of range", ErrInvalidInput, year, month)
	}
	profile, err := s.store.EmployeeProfile(ctx, businessID, userID)
	if err != nil {
		return Calculation{}, err
	}
	return s.calculateProfile(ctx, profile, year, month)
}

func (s *Service) calculateProfile(ctx context.Context, profile EmployeeProfile, year, month int) (Calculation, error) {
	period := NewPeriod(year, month, s.opts.Location)
	from, to := period.Bounds()
	records, err := s.store.ListWorkRecords(ctx, profile.BusinessID, profile.UserID, from, to)
	if err != nil {
		return Calculation{}, fmt.Errorf("load work records: %w", err)
	}
	return s.Calculate(ctx, profile.Input(period, records))
}

type batchItem struct {
	index int
	calc  Calculation
}

// CalculateBatch runs Calculate for every input. Results keep input order.
func (s *Service) CalculateBatch(ctx context.Context, inputs []PayrollInput) ([]Calculation, error) {
	out := make([]Calculation, len(inputs))
	if s.pool == nil {
		for i, in := range inputs {
			calc, err := s.Calculate(ctx, in)
			if err != nil {
				return nil, err
			}
			out[i] = calc
		}
		return out, nil
	}

	results := make(chan workerpool.Result, len(inputs))
	for i, in := range inputs {
		i, in := i, in
		err := s.pool.Submit(ctx, workerpool.Task{
			Fn: func(context.Context) (any, error) {
				calc, err := s.Calculate(ctx, in)
				return batchItem{index: i, calc: calc}, err
			},
			ResultC: results,
		})
		if err != nil {
			return nil, err
		}
	}

	for range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.pool.Done():
			return nil, workerpool.ErrClosed
		case res := <-results:
			if res.Err != nil {
				return nil, res.Err
			}
			item := res.Value.(batchItem)
			out[item.index] = item.calc
		}
	}
	return out, nil
}

// IssueStatement stores the result as a draft statement. The employee is
// notified when the statement is new or its amounts changed. An existing
// confirmed or paid statement is never overwritten.
func (s *Service) IssueStatement(ctx context.Context, calc Calculation) (SaveResult, error) {
	if !calc.Valid() {
		problems := append(append([]string{}, calc.InputValidation.Errors...), calc.ResultValidation.Errors...)
		return SaveResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	result := calc.Result
	saved, err := s.store.SaveStatement(ctx, ToStatementRecord(result))
	if err != nil {
		return SaveResult{}, err
	}
	if !saved.Issued() {
		slog.Debug("pay statement unchanged", "statementId", saved.ID, "userId", result.Employee.UserID,
			"period", result.Period.Key())
		return saved, nil
	}

	if s.notifier != nil {
		title := "급여명세서 발급"
		if saved.Changed {
			title = "급여명세서 재발급"
		}
		body := fmt.Sprintf("%d년 %d월 급여명세서가 발급되었습니다. 실수령액 %s",
			result.Period.Year, result.Period.Month, FormatWon(result.Summary.NetPay))
		if err := s.notifier.Create(ctx, result.Employee.BusinessID, result.Employee.UserID, NotificationTypeIssued, title, body); err != nil {
			slog.Warn("payslip notification failed", "statementId", saved.ID, "userId", result.Employee.UserID, "err", err)
		}
	}
	slog.Info("pay statement issued", "statementId", saved.ID, "businessId", result.Employee.BusinessID,
		"userId", result.Employee.UserID, "period", result.Period.Key(), "changed", saved.Changed)
	return saved, nil
}

func (s *Service) ListStatements(ctx context.Context, businessID string, year, month int) ([]StoredStatement, error) {
	return s.store.ListStatements(ctx, businessID, year, month)
}

var statusTransitions = map[string][]string{
	StatusDraft:     {StatusConfirmed},
	StatusConfirmed: {StatusPaid, StatusDraft},
}

// CanTransition reports whether a statement may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatementStatus applies an allowed transition. A concurrent change
// between the read and the write is reported as ErrInvalidStatusTransition.
func (s *Service) UpdateStatementStatus(ctx context.Context, statementID, status string) error {
	current, err := s.store.StatementStatus(ctx, statementID)
	if err != nil {
		return err
	}
	if !CanTransition(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current, status)
	}
	return s.store.UpdateStatementStatus(ctx, statementID, current, status)
}

// RunPayroll issues draft statements for every active employee of a business.
// Per-employee failures are collected in the summary.
func (s *Service) RunPayroll(ctx context.Context, businessID string, year, month int) (RunSummary, error) {
	summary := RunSummary{BusinessID: businessID, Period: fmt.Sprintf("%04d-%02d", year, month)}
	if year < MinValidYear || year > MaxValidYear || month < 1 || month > 12 {
		return summary, fmt.Errorf("%w: period %s out of range", ErrInvalidInput, summary.Period)
	}
	employees, err := s.store.ListEmployees(ctx, businessID)
	if err != nil {
		return summary, err
	}

	for _, profile := range employees {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		calc, err := s.calculateProfile(ctx, profile, year, month)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", profile.UserID, err))
			continue
		}
		saved, err := s.IssueStatement(ctx, calc)
		if err != nil {
			switch {
			case errors.Is(err, ErrStatementLocked), errors.Is(err, ErrInvalidInput):
				summary.Skipped++
			default:
				summary.Failed++
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", profile.UserID, err))
			continue
		}
		if saved.Issued() {
			summary.Issued++
		} else {
			summary.Unchanged++
		}
	}

	slog.Info("payroll run finished", "businessId", businessID, "period", summary.Period,
		"issued", summary.Issued, "unchanged", summary.Unchanged, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}
