package payroll

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListEmployees(ctx context.Context, businessID string) ([]EmployeeProfile, error)
	EmployeeProfile(ctx context.Context, businessID, userID string) (EmployeeProfile, error)
	ListWorkRecords(ctx context.Context, businessID, userID string, from, to time.Time) ([]WorkRecord, error)
	SaveStatement(ctx context.Context, record StatementRecord) (SaveResult, error)
	ListStatements(ctx context.Context, businessID string, year, month int) ([]StoredStatement, error)
	StatementStatus(ctx context.Context, statementID string) (string, error)
	UpdateStatementStatus(ctx context.Context, statementID, from, to string) error
}

// Notifier receives a message when a statement is issued.
type Notifier interface {
	Create(ctx context.Context, businessID, userID, ntype, title, body string) error
}
