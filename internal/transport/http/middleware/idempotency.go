package middleware

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const IdempotencyKeyHeader = "Idempotency-Key"

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyStore remembers the response sent for a client supplied key so a
// retried request can be answered without running again. Keys are scoped, for
// example per business, and per endpoint.
type IdempotencyStore interface {
	Check(ctx context.Context, scope, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, scope, endpoint, key, requestHash string, response json.RawMessage) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type PostgresIdempotencyStore struct {
	db *pgxpool.Pool
}

func NewIdempotencyStore(db *pgxpool.Pool) *PostgresIdempotencyStore {
	return &PostgresIdempotencyStore{db: db}
}

func (s *PostgresIdempotencyStore) Check(ctx context.Context, scope, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE scope = $1 AND key = $2 AND endpoint = $3
  `, scope, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *PostgresIdempotencyStore) Save(ctx context.Context, scope, endpoint, key, requestHash string, response json.RawMessage) error {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (scope, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (scope, key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, scope, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

type SQLiteIdempotencyStore struct {
	db *sql.DB
}

func NewSQLiteIdempotencyStore(db *sql.DB) *SQLiteIdempotencyStore {
	return &SQLiteIdempotencyStore{db: db}
}

func (s *SQLiteIdempotencyStore) Check(ctx context.Context, scope, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	var storedHash, stored string
	err := s.db.QueryRowContext(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE scope = ? AND key = ? AND endpoint = ?
  `, scope, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return json.RawMessage(stored), true, nil
}

func (s *SQLiteIdempotencyStore) Save(ctx context.Context, scope, endpoint, key, requestHash string, response json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, `
    INSERT INTO idempotency_keys (scope, key, endpoint, request_hash, response_json)
    VALUES (?, ?, ?, ?, ?)
    ON CONFLICT (scope, key, endpoint)
    DO UPDATE SET response_json = excluded.response_json
    WHERE idempotency_keys.request_hash = excluded.request_hash
  `, scope, key, endpoint, requestHash, string(response))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}
