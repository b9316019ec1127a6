package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
    e.business_id, COALESCE(b.name, ''), e.user_id, e.name, COALESCE(e.position, ''),
    e.wage_type, e.base_wage, e.hourly_rate, e.dependents, e.has_spouse, e.children, e.hire_date`

func scanEmployee(scan func(dest ...any) error) (EmployeeProfile, error) {
	var p EmployeeProfile
	err := scan(&p.BusinessID, &p.BusinessName, &p.UserID, &p.Name, &p.Position,
		&p.WageType, &p.BaseWage, &p.HourlyRate, &p.Dependents, &p.HasSpouse, &p.Children, &p.HireDate)
	return p, err
}

func (s *Store) ListEmployees(ctx context.Context, businessID string) ([]EmployeeProfile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+employeeColumns+`
    FROM employees e
    LEFT JOIN businesses b ON b.id = e.business_id
    WHERE e.business_id = $1 AND e.status = 'active'
    ORDER BY e.user_id
  `, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeProfile
	for rows.Next() {
		profile, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeProfile(ctx context.Context, businessID, userID string) (EmployeeProfile, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+employeeColumns+`
    FROM employees e
    LEFT JOIN businesses b ON b.id = e.business_id
    WHERE e.business_id = $1 AND e.user_id = $2
  `, businessID, userID)
	profile, err := scanEmployee(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeProfile{}, ErrEmployeeNotFound
	}
	return profile, err
}

func (s *Store) ListWorkRecords(ctx context.Context, businessID, userID string, from, to time.Time) ([]WorkRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT check_in_time, check_out_time
    FROM attendance_records
    WHERE business_id = $1 AND user_id = $2
      AND check_in_time >= $3 AND check_in_time < $4
    ORDER BY check_in_time
  `, businessID, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []WorkRecord
	for rows.Next() {
		var record WorkRecord
		if err := rows.Scan(&record.CheckInTime, &record.CheckOutTime); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) SaveStatement(ctx context.Context, record StatementRecord) (SaveResult, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	defer tx.Rollback(ctx)

	var prev storedTotals
	err = tx.QueryRow(ctx, currentStatementSQL(postgresPlaceholder)+" FOR UPDATE",
		record.BusinessID, record.UserID, record.Year, record.Month,
	).Scan(&prev.status, &prev.grossPay, &prev.totalDeductions, &prev.netPay)
	found := err == nil
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return SaveResult{}, err
	case prev.status != StatusDraft:
		return SaveResult{}, ErrStatementLocked
	}

	var id string
	args := append([]any{uuid.NewString()}, record.Values()...)
	err = tx.QueryRow(ctx, upsertStatementSQL(postgresPlaceholder), args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaveResult{}, ErrStatementLocked
	}
	if err != nil {
		return SaveResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return SaveResult{}, err
	}
	return saveResult(id, prev, found, record), nil
}

func (s *Store) ListStatements(ctx context.Context, businessID string, year, month int) ([]StoredStatement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, `+strings.Join(StatementColumns, ", ")+`, created_at, updated_at
    FROM pay_statements
    WHERE business_id = $1 AND year = $2 AND month = $3
    ORDER BY user_id
  `, businessID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredStatement
	for rows.Next() {
		var st StoredStatement
		dest := append([]any{&st.ID}, st.Record.Targets()...)
		dest = append(dest, &st.CreatedAt, &st.UpdatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) StatementStatus(ctx context.Context, statementID string) (string, error) {
	var status string
	err := s.DB.QueryRow(ctx, "SELECT status FROM pay_statements WHERE id = $1", statementID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrStatementNotFound
	}
	return status, err
}

// UpdateStatementStatus moves a statement from one status to another. The row
// is only touched while it still has the from status.
func (s *Store) UpdateStatementStatus(ctx context.Context, statementID, from, to string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE pay_statements SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, to, statementID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missedTransition(ctx, statementID, from, to)
	}
	return nil
}

func (s *Store) missedTransition(ctx context.Context, statementID, from, to string) error {
	current, err := s.StatementStatus(ctx, statementID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s, statement is %s", ErrInvalidStatusTransition, from, to, current)
}

func postgresPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func sqlitePlaceholder(int) string {
	return "?"
}

// storedTotals holds the amounts of a statement SaveStatement is about to replace.
type storedTotals struct {
	status                            string
	grossPay, totalDeductions, netPay int64
}

func currentStatementSQL(placeholder func(int) string) string {
	return `
    SELECT status, gross_pay, total_deductions, net_pay
    FROM pay_statements
    WHERE business_id = ` + placeholder(1) + ` AND user_id = ` + placeholder(2) + `
      AND year = ` + placeholder(3) + ` AND month = ` + placeholder(4)
}

func saveResult(id string, prev storedTotals, found bool, record StatementRecord) SaveResult {
	if !found {
		return SaveResult{ID: id, Created: true}
	}
	changed := prev.grossPay != record.GrossPay ||
		prev.totalDeductions != record.TotalDeductions ||
		prev.netPay != record.NetPay
	return SaveResult{ID: id, Changed: changed}
}

// upsertStatementSQL replaces a draft statement for the same employee and
// month; confirmed or paid statements are left alone and no row is returned.
func upsertStatementSQL(placeholder func(int) string) string {
	params := make([]string, 0, len(StatementColumns)+1)
	for i := 0; i <= len(StatementColumns); i++ {
		params = append(params, placeholder(i+1))
	}
	updates := make([]string, 0, len(StatementColumns))
	for _, col := range StatementColumns {
		switch col {
		case "business_id", "user_id", "year", "month":
			continue
		}
		updates = append(updates, col+" = excluded."+col)
	}
	return `
    INSERT INTO pay_statements (id, ` + strings.Join(StatementColumns, ", ") + `)
    VALUES (` + strings.Join(params, ", ") + `)
    ON CONFLICT (business_id, user_id, year, month) DO UPDATE
      SET ` + strings.Join(updates, ", ") + `, updated_at = CURRENT_TIMESTAMP
      WHERE pay_statements.status = 'draft'
    RETURNING id`
}
