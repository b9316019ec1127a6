package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore backs a single-site deployment with a local database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) ListEmployees(ctx context.Context, businessID string) ([]EmployeeProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT`+employeeColumns+`
    FROM employees e
    LEFT JOIN businesses b ON b.id = e.business_id
    WHERE e.business_id = ? AND e.status = 'active'
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

func (s *SQLiteStore) EmployeeProfile(ctx context.Context, businessID, userID string) (EmployeeProfile, error) {
	row := s.db.QueryRowContext(ctx, `
    SELECT`+employeeColumns+`
    FROM employees e
    LEFT JOIN businesses b ON b.id = e.business_id
    WHERE e.business_id = ? AND e.user_id = ?
  `, businessID, userID)
	profile, err := scanEmployee(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return EmployeeProfile{}, ErrEmployeeNotFound
	}
	return profile, err
}

func (s *SQLiteStore) ListWorkRecords(ctx context.Context, businessID, userID string, from, to time.Time) ([]WorkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT check_in_time, check_out_time
    FROM attendance_records
    WHERE business_id = ? AND user_id = ?
      AND check_in_time >= ? AND check_in_time < ?
    ORDER BY check_in_time
  `, businessID, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []WorkRecord
	for rows.Next() {
		var record WorkRecord
		var checkOut sql.NullTime
		if err := rows.Scan(&record.CheckInTime, &checkOut); err != nil {
			return nil, err
		}
		if checkOut.Valid {
			out := checkOut.Time
			record.CheckOutTime = &out
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// AddWorkRecord stores a clock-in, with the clock-out when already known.
func (s *SQLiteStore) AddWorkRecord(ctx context.Context, businessID, userID string, record WorkRecord) error {
	var checkOut any
	if record.CheckOutTime != nil {
		checkOut = record.CheckOutTime.UTC()
	}
	_, err := s.db.ExecContext(ctx, `
    INSERT INTO attendance_records (id, business_id, user_id, check_in_time, check_out_time)
    VALUES (?, ?, ?, ?, ?)
  `, uuid.NewString(), businessID, userID, record.CheckInTime.UTC(), checkOut)
	return err
}

// UpsertEmployee creates or replaces an employee profile.
func (s *SQLiteStore) UpsertEmployee(ctx context.Context, p EmployeeProfile) error {
	if _, err := s.db.ExecContext(ctx, `
    INSERT INTO businesses (id, name) VALUES (?, ?)
    ON CONFLICT (id) DO UPDATE SET name = excluded.name
  `, p.BusinessID, p.BusinessName); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
    INSERT INTO employees (business_id, user_id, name, position, wage_type, base_wage, hourly_rate,
                           dependents, has_spouse, children, hire_date, status)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active')
    ON CONFLICT (business_id, user_id) DO UPDATE SET
      name = excluded.name, position = excluded.position, wage_type = excluded.wage_type,
      base_wage = excluded.base_wage, hourly_rate = excluded.hourly_rate,
      dependents = excluded.dependents, has_spouse = excluded.has_spouse,
      children = excluded.children, hire_date = excluded.hire_date
  `, p.BusinessID, p.UserID, p.Name, p.Position, p.WageType, p.BaseWage, p.HourlyRate,
		p.Dependents, p.HasSpouse, p.Children, p.HireDate)
	return err
}

func (s *SQLiteStore) SaveStatement(ctx context.Context, record StatementRecord) (SaveResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, err
	}
	defer tx.Rollback()

	var prev storedTotals
	err = tx.QueryRowContext(ctx, currentStatementSQL(sqlitePlaceholder),
		record.BusinessID, record.UserID, record.Year, record.Month,
	).Scan(&prev.status, &prev.grossPay, &prev.totalDeductions, &prev.netPay)
	found := err == nil
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return SaveResult{}, err
	case prev.status != StatusDraft:
		return SaveResult{}, ErrStatementLocked
	}

	var id string
	args := append([]any{uuid.NewString()}, record.Values()...)
	err = tx.QueryRowContext(ctx, upsertStatementSQL(sqlitePlaceholder), args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveResult{}, ErrStatementLocked
	}
	if err != nil {
		return SaveResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return SaveResult{}, err
	}
	return saveResult(id, prev, found, record), nil
}

func (s *SQLiteStore) ListStatements(ctx context.Context, businessID string, year, month int) ([]StoredStatement, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT id, `+strings.Join(StatementColumns, ", ")+`, created_at, updated_at
    FROM pay_statements
    WHERE business_id = ? AND year = ? AND month = ?
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

func (s *SQLiteStore) StatementStatus(ctx context.Context, statementID string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM pay_statements WHERE id = ?", statementID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrStatementNotFound
	}
	return status, err
}

func (s *SQLiteStore) UpdateStatementStatus(ctx context.Context, statementID, from, to string) error {
	res, err := s.db.ExecContext(ctx, `
    UPDATE pay_statements SET status = ?, updated_at = CURRENT_TIMESTAMP
    WHERE id = ? AND status = ?
  `, to, statementID, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	current, err := s.StatementStatus(ctx, statementID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s, statement is %s", ErrInvalidStatusTransition, from, to, current)
}
