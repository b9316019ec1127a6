package jobs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) StartRun(ctx context.Context, businessID, jobType string) (string, error) {
	runID := ""
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (business_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, businessID, jobType, StatusRunning).Scan(&runID)
	return runID, err
}

func (s *Store) FinishRun(ctx context.Context, runID, status string, details []byte) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, runID)
	return err
}

func (s *Store) ListBusinesses(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM businesses ORDER BY id`)
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
