package db

import (
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestMigrationNamesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"002_notifications.sql": {Data: []byte("SELECT 1")},
		"001_init.sql":          {Data: []byte("SELECT 1")},
		"README.md":             {Data: []byte("notes")},
		"archive/000_old.sql":   {Data: []byte("SELECT 1")},
	}
	names, err := migrationNames(fsys)
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if len(names) != 2 || names[0] != "001_init.sql" || names[1] != "002_notifications.sql" {
		t.Fatalf("unexpected migration order: %v", names)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	names, err := migrationNames(sub)
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("expected embedded migrations")
	}
}
