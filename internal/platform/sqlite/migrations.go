package sqlite

import (
	"database/sql"
)

const createBusinessesTable = `
CREATE TABLE IF NOT EXISTS businesses (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
    business_id TEXT NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    position TEXT,
    wage_type TEXT NOT NULL DEFAULT 'monthly',
    base_wage INTEGER NOT NULL DEFAULT 0,
    hourly_rate INTEGER NOT NULL DEFAULT 0,
    dependents INTEGER NOT NULL DEFAULT 1,
    has_spouse BOOLEAN NOT NULL DEFAULT 0,
    children INTEGER NOT NULL DEFAULT 0,
    hire_date DATE,
    status TEXT NOT NULL DEFAULT 'active',
    PRIMARY KEY (business_id, user_id)
);
`

const createAttendanceTable = `
CREATE TABLE IF NOT EXISTS attendance_records (
    id TEXT PRIMARY KEY,
    business_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    check_in_time TIMESTAMP NOT NULL,
    check_out_time TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_attendance_user_check_in
    ON attendance_records (business_id, user_id, check_in_time);
`

const createPayStatementsTable = `
CREATE TABLE IF NOT EXISTS pay_statements (
    id TEXT PRIMARY KEY,
    business_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    year INTEGER NOT NULL,
    month INTEGER NOT NULL,
    period_start DATE NOT NULL,
    period_end DATE NOT NULL,
    total_work_hours REAL NOT NULL DEFAULT 0,
    regular_work_hours REAL NOT NULL DEFAULT 0,
    overtime_hours REAL NOT NULL DEFAULT 0,
    night_hours REAL NOT NULL DEFAULT 0,
    weekend_hours REAL NOT NULL DEFAULT 0,
    holiday_hours REAL NOT NULL DEFAULT 0,
    base_wage INTEGER NOT NULL DEFAULT 0,
    hourly_wage INTEGER NOT NULL DEFAULT 0,
    regular_pay INTEGER NOT NULL DEFAULT 0,
    overtime_pay INTEGER NOT NULL DEFAULT 0,
    night_shift_pay INTEGER NOT NULL DEFAULT 0,
    weekend_pay INTEGER NOT NULL DEFAULT 0,
    holiday_pay INTEGER NOT NULL DEFAULT 0,
    weekly_rest_allowance INTEGER NOT NULL DEFAULT 0,
    annual_leave_allowance INTEGER NOT NULL DEFAULT 0,
    meal_allowance INTEGER NOT NULL DEFAULT 0,
    transport_allowance INTEGER NOT NULL DEFAULT 0,
    family_allowance INTEGER NOT NULL DEFAULT 0,
    position_allowance INTEGER NOT NULL DEFAULT 0,
    longevity_allowance INTEGER NOT NULL DEFAULT 0,
    other_allowances INTEGER NOT NULL DEFAULT 0,
    total_allowances INTEGER NOT NULL DEFAULT 0,
    national_pension INTEGER NOT NULL DEFAULT 0,
    health_insurance INTEGER NOT NULL DEFAULT 0,
    long_term_care INTEGER NOT NULL DEFAULT 0,
    employment_insurance INTEGER NOT NULL DEFAULT 0,
    income_tax INTEGER NOT NULL DEFAULT 0,
    local_income_tax INTEGER NOT NULL DEFAULT 0,
    other_deductions INTEGER NOT NULL DEFAULT 0,
    total_deductions INTEGER NOT NULL DEFAULT 0,
    gross_pay INTEGER NOT NULL DEFAULT 0,
    net_pay INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'draft',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (business_id, user_id, year, month)
);
`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    business_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    read_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const createJobRunsTable = `
CREATE TABLE IF NOT EXISTS job_runs (
    id TEXT PRIMARY KEY,
    business_id TEXT NOT NULL,
    job_type TEXT NOT NULL,
    status TEXT NOT NULL,
    details_json TEXT,
    started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP
);
`

const createIdempotencyKeysTable = `
CREATE TABLE IF NOT EXISTS idempotency_keys (
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    endpoint TEXT NOT NULL,
    request_hash TEXT NOT NULL,
    response_json TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (scope, key, endpoint)
);
`

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(db *sql.DB) error {
	for _, stmt := range []string{
		createBusinessesTable,
		createEmployeesTable,
		createAttendanceTable,
		createPayStatementsTable,
		createNotificationsTable,
		createJobRunsTable,
		createIdempotencyKeysTable,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
