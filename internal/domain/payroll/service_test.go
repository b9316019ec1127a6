package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dotplatform/internal/platform/workerpool"
)

type fakeStore struct {
	mu         sync.Mutex
	employees  []EmployeeProfile
	records    map[string][]WorkRecord
	statements map[string]StatementRecord
	status     map[string]string
	recordErr  error
}

func newFakeStore(employees ...EmployeeProfile) *fakeStore {
	return &fakeStore{
		employees:  employees,
		records:    map[string][]WorkRecord{},
		statements: map[string]StatementRecord{},
		status:     map[string]string{},
	}
}

func (f *fakeStore) ListEmployees(_ context.Context, businessID string) ([]EmployeeProfile, error) {
	var out []EmployeeProfile
	for _, e := range f.employees {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) EmployeeProfile(_ context.Context, businessID, userID string) (EmployeeProfile, error) {
	for _, e := range f.employees {
		if e.BusinessID == businessID && e.UserID == userID {
			return e, nil
		}
	}
	return EmployeeProfile{}, ErrEmployeeNotFound
}

func (f *fakeStore) ListWorkRecords(_ context.Context, businessID, userID string, from, to time.Time) ([]WorkRecord, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	var out []WorkRecord
	for _, r := range f.records[businessID+"/"+userID] {
		if !r.CheckInTime.Before(from) && r.CheckInTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveStatement(_ context.Context, rec StatementRecord) (SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("%s-%s-%04d-%02d", rec.BusinessID, rec.UserID, rec.Year, rec.Month)
	status, found := f.status[id]
	if found && status != StatusDraft {
		return SaveResult{}, ErrStatementLocked
	}
	prev := f.statements[id]
	f.statements[id] = rec
	f.status[id] = rec.Status
	return saveResult(id, storedTotals{
		status: status, grossPay: prev.GrossPay, totalDeductions: prev.TotalDeductions, netPay: prev.NetPay,
	}, found, rec), nil
}

func (f *fakeStore) ListStatements(_ context.Context, businessID string, year, month int) ([]StoredStatement, error) {
	var out []StoredStatement
	for id, rec := range f.statements {
		if rec.BusinessID == businessID && rec.Year == year && rec.Month == month {
			rec.Status = f.status[id]
			out = append(out, StoredStatement{ID: id, Record: rec})
		}
	}
	return out, nil
}

func (f *fakeStore) StatementStatus(_ context.Context, id string) (string, error) {
	status, ok := f.status[id]
	if !ok {
		return "", ErrStatementNotFound
	}
	return status, nil
}

func (f *fakeStore) UpdateStatementStatus(_ context.Context, id, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.status[id]
	if !ok {
		return ErrStatementNotFound
	}
	if current != from {
		return ErrInvalidStatusTransition
	}
	f.status[id] = to
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	fails bool
}

func (n *fakeNotifier) Create(_ context.Context, businessID, userID, ntype, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails {
		return errors.New("notifier down")
	}
	n.sent = append(n.sent, userID+":"+ntype+":"+body)
	return nil
}

func monthlyProfile(userID string) EmployeeProfile {
	return EmployeeProfile{
		BusinessID: "biz", BusinessName: "도트 카페", UserID: userID, Name: "직원 " + userID,
		WageType: WageTypeMonthly, BaseWage: 2500000, Dependents: 1,
	}
}

func TestServiceCalculate(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil, DefaultOptions())
	calc, err := svc.Calculate(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, calc.Valid())
	assert.Equal(t, calc.Result.Summary.GrossPay-calc.Result.Summary.TotalDeductions, calc.Result.Summary.NetPay)

	bad := validInput()
	bad.UserID = ""
	calc, err = svc.Calculate(context.Background(), bad)
	require.NoError(t, err)
	assert.False(t, calc.Valid())
	assert.NotEmpty(t, calc.InputValidation.Errors)
}

func TestServiceCalculateCancelled(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Calculate(ctx, validInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServiceCalculateForPeriod(t *testing.T) {
	store := newFakeStore(EmployeeProfile{
		BusinessID: "biz", UserID: "p1", WageType: WageTypeHourly, HourlyRate: 10000, Dependents: 1,
	})
	store.records["biz/p1"] = append(weekOfShifts(),
		record(kst(2025, 2, 3, 9, 0), kst(2025, 2, 3, 17, 0)),
	)
	svc := NewService(store, nil, nil, DefaultOptions())

	calc, err := svc.CalculateForPeriod(context.Background(), "biz", "p1", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 2400, calc.Result.WorkHours.Total)
	assert.Equal(t, int64(480000), calc.Result.Summary.GrossPay)

	_, err = svc.CalculateForPeriod(context.Background(), "biz", "missing", 2025, 1)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = svc.CalculateForPeriod(context.Background(), "biz", "p1", 2025, 13)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceCalculateBatchKeepsOrder(t *testing.T) {
	pool := workerpool.New(4, 8)
	defer pool.Close()
	svc := NewService(newFakeStore(), nil, pool, DefaultOptions())

	var inputs []PayrollInput
	for i := 0; i < 12; i++ {
		in := validInput()
		in.UserID = fmt.Sprintf("u%02d", i)
		in.BaseWage = 2500000 + int64(i)*100000
		inputs = append(inputs, in)
	}
	out, err := svc.CalculateBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, out, len(inputs))
	for i, calc := range out {
		assert.Equal(t, inputs[i].UserID, calc.Result.Employee.UserID)
		assert.Equal(t, inputs[i].BaseWage, calc.Result.Wages.RegularPay)
	}

	sequential := NewService(newFakeStore(), nil, nil, DefaultOptions())
	seqOut, err := sequential.CalculateBatch(context.Background(), inputs)
	require.NoError(t, err)
	assert.Equal(t, out, seqOut)
}

func TestServiceIssueStatement(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, nil, DefaultOptions())

	calc, err := svc.Calculate(context.Background(), validInput())
	require.NoError(t, err)
	saved, err := svc.IssueStatement(context.Background(), calc)
	require.NoError(t, err)
	assert.True(t, saved.Created)
	assert.Equal(t, StatusDraft, store.status[saved.ID])
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], NotificationTypeIssued)
	assert.Contains(t, notifier.sent[0], FormatWon(calc.Result.Summary.NetPay))

	bad := validInput()
	bad.BusinessID = ""
	badCalc, err := svc.Calculate(context.Background(), bad)
	require.NoError(t, err)
	_, err = svc.IssueStatement(context.Background(), badCalc)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceIssueStatementNotifierFailureIsNotFatal(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeNotifier{fails: true}, nil, DefaultOptions())
	calc, err := svc.Calculate(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.IssueStatement(context.Background(), calc)
	assert.NoError(t, err)
}

func TestServiceStatusTransitions(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil, DefaultOptions())
	calc, err := svc.Calculate(context.Background(), validInput())
	require.NoError(t, err)
	saved, err := svc.IssueStatement(context.Background(), calc)
	require.NoError(t, err)
	id := saved.ID

	assert.ErrorIs(t, svc.UpdateStatementStatus(context.Background(), id, StatusPaid), ErrInvalidStatusTransition)
	require.NoError(t, svc.UpdateStatementStatus(context.Background(), id, StatusConfirmed))

	_, err = svc.IssueStatement(context.Background(), calc)
	assert.ErrorIs(t, err, ErrStatementLocked)

	require.NoError(t, svc.UpdateStatementStatus(context.Background(), id, StatusPaid))
	assert.ErrorIs(t, svc.UpdateStatementStatus(context.Background(), id, StatusDraft), ErrInvalidStatusTransition)
	assert.ErrorIs(t, svc.UpdateStatementStatus(context.Background(), "nope", StatusConfirmed), ErrStatementNotFound)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusConfirmed))
	assert.True(t, CanTransition(StatusConfirmed, StatusPaid))
	assert.True(t, CanTransition(StatusConfirmed, StatusDraft))
	assert.False(t, CanTransition(StatusDraft, StatusPaid))
	assert.False(t, CanTransition(StatusPaid, StatusConfirmed))
	assert.False(t, CanTransition(StatusDraft, StatusDraft))
}

func TestServiceRunPayroll(t *testing.T) {
	store := newFakeStore(monthlyProfile("a"), monthlyProfile("b"), monthlyProfile("c"))
	svc := NewService(store, &fakeNotifier{}, nil, DefaultOptions())

	summary, err := svc.RunPayroll(context.Background(), "biz", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Issued)
	assert.Equal(t, "2025-01", summary.Period)

	store.status["biz-b-2025-01"] = StatusConfirmed
	summary, err = svc.RunPayroll(context.Background(), "biz", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Issued)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "b:")

	store.recordErr = errors.New("db down")
	summary, err = svc.RunPayroll(context.Background(), "biz", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Failed)

	_, err = svc.RunPayroll(context.Background(), "biz", 2019, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceRunPayrollNotifiesOncePerStatement(t *testing.T) {
	store := newFakeStore(monthlyProfile("u1"))
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, nil, DefaultOptions())

	for i := 0; i < 3; i++ {
		_, err := svc.RunPayroll(context.Background(), "biz", 2025, 1)
		require.NoError(t, err)
	}
	require.Len(t, notifier.sent, 1)

	store.employees[0].BaseWage = 2600000
	summary, err := svc.RunPayroll(context.Background(), "biz", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Issued)
	require.Len(t, notifier.sent, 2)
	assert.NotEqual(t, notifier.sent[0], notifier.sent[1])
}

func TestServiceStatusUpdateLosesRace(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil, DefaultOptions())
	calc, err := svc.Calculate(context.Background(), validInput())
	require.NoError(t, err)
	saved, err := svc.IssueStatement(context.Background(), calc)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatementStatus(context.Background(), saved.ID, StatusConfirmed))

	// Another request already moved the statement on.
	require.NoError(t, store.UpdateStatementStatus(context.Background(), saved.ID, StatusConfirmed, StatusPaid))
	err = store.UpdateStatementStatus(context.Background(), saved.ID, StatusConfirmed, StatusDraft)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, StatusPaid, store.status[saved.ID])
}
