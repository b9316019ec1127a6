package notifications

import (
	"context"
	"database/sql"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateNotification(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `
    INSERT INTO notifications (id, business_id, user_id, type, title, body)
    VALUES (?, ?, ?, ?, ?, ?)
  `, n.ID, n.BusinessID, n.UserID, n.Type, n.Title, n.Body)
	return err
}

func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT id, business_id, user_id, type, title, body, read_at, created_at
    FROM notifications
    WHERE user_id = ?
    ORDER BY created_at DESC, rowid DESC
    LIMIT ? OFFSET ?
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.BusinessID, &n.UserID, &n.Type, &n.Title, &n.Body, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountNotifications(ctx context.Context, userID string) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = ?", userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *SQLiteStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.db.ExecContext(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, CURRENT_TIMESTAMP)
    WHERE user_id = ? AND id = ?
  `, userID, notificationID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
