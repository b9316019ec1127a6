package jobs

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) StartRun(ctx context.Context, businessID, jobType string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
    INSERT INTO job_runs (id, business_id, job_type, status)
    VALUES (?, ?, ?, ?)
  `, runID, businessID, jobType, StatusRunning)
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID, status string, details []byte) error {
	_, err := s.db.ExecContext(ctx, `
    UPDATE job_runs
    SET status = ?, details_json = ?, completed_at = CURRENT_TIMESTAMP
    WHERE id = ?
  `, status, string(details), runID)
	return err
}

func (s *SQLiteStore) ListBusinesses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM businesses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
