package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations_PairedUpAndDown(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migrations")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", name)
		}
	}
	for base := range ups {
		if !downs[base] {
			t.Fatalf("migration %s has no down file", base)
		}
	}
	if len(ups) != len(downs) {
		t.Fatalf("up/down count mismatch: %d vs %d", len(ups), len(downs))
	}
}

func TestEmbeddedMigrations_CreateCatalogAndLedger(t *testing.T) {
	t.Parallel()

	var all strings.Builder
	err := fs.WalkDir(migrationsFS, migrationsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return err
		}
		data, err := fs.ReadFile(migrationsFS, path)
		if err != nil {
			return err
		}
		all.Write(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk migrations: %v", err)
	}

	sql := all.String()
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS products", "CREATE TABLE IF NOT EXISTS orders", "product_snapshot JSONB", "UNIQUE (product_code)"} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected migrations to contain %q", want)
		}
	}
}

func TestMigrateUp_EmptyDSN(t *testing.T) {
	t.Parallel()

	if err := MigrateUp(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
