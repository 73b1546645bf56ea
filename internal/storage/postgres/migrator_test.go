package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_create_drafts.up.sql": {
			Data: []byte("CREATE TABLE drafts (id TEXT PRIMARY KEY);"),
		},
		"sql/migrations/0001_create_drafts.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS drafts;"),
		},
		"sql/migrations/0002_create_receipts.up.sql": {
			Data: []byte("CREATE TABLE receipts (id TEXT PRIMARY KEY);"),
		},
		"sql/migrations/0002_create_receipts.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS receipts;"),
		},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].Version != 1 || migrations[0].Name != "create_drafts" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "create_receipts" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestLoadMigrationsFromFS_MissingDown(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_create_drafts.up.sql": {
			Data: []byte("CREATE TABLE drafts (id TEXT PRIMARY KEY);"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsFromFS_BadFileName(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/create_drafts.sql": {
			Data: []byte("CREATE TABLE drafts (id TEXT PRIMARY KEY);"),
		},
	}

	if _, err := loadMigrationsFromFS(fsys); err == nil {
		t.Fatal("expected error for invalid migration file name")
	}
}

func TestEmbeddedMigrationsAreWellFormed(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations failed to load: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Fatalf("migrations are not strictly ordered: %d after %d",
				migrations[i].Version, migrations[i-1].Version)
		}
	}
}
