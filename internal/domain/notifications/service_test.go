package notifications

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dotplatform/internal/domain/payroll"
	"dotplatform/internal/platform/sqlite"
)

func newSQLiteService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "notifications.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlite.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(NewSQLiteStore(db))
}

func TestTypeMatchesPayrollNotifier(t *testing.T) {
	if TypePayslipIssued != payroll.NotificationTypeIssued {
		t.Fatalf("notification type drift: %q vs %q", TypePayslipIssued, payroll.NotificationTypeIssued)
	}
	var _ payroll.Notifier = (*Service)(nil)
}

func TestCreateListAndCount(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)

	for _, title := range []string{"first", "second", "third"} {
		if err := svc.Create(ctx, "biz-1", "u-1", TypePayslipIssued, title, "body"); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	if err := svc.Create(ctx, "biz-1", "u-2", TypePayslipIssued, "other", "body"); err != nil {
		t.Fatalf("create other: %v", err)
	}

	total, err := svc.Count(ctx, " u-1 ")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 notifications, got %d", total)
	}

	items, err := svc.List(ctx, "u-1", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected page of 2, got %d", len(items))
	}
	if items[0].Title != "third" || items[1].Title != "second" {
		t.Fatalf("expected newest first, got %q, %q", items[0].Title, items[1].Title)
	}
	for _, n := range items {
		if n.ID == "" || n.ReadAt != nil {
			t.Fatalf("unexpected notification state: %+v", n)
		}
	}

	items, err = svc.List(ctx, "u-1", 0, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(items) != 1 || items[0].Title != "first" {
		t.Fatalf("expected last page with first notification, got %+v", items)
	}
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	svc := newSQLiteService(t)
	if err := svc.Create(ctx, "biz-1", "u-1", TypePayslipIssued, "title", "body"); err != nil {
		t.Fatalf("create: %v", err)
	}
	items, err := svc.List(ctx, "u-1", 10, 0)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %v (%d items)", err, len(items))
	}
	id := items[0].ID

	if err := svc.MarkRead(ctx, "u-2", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	if err := svc.MarkRead(ctx, "u-1", id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	items, err = svc.List(ctx, "u-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].ReadAt == nil {
		t.Fatal("expected readAt to be set")
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{50, 50},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Fatalf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
