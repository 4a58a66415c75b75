package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/app":   "pgx5://u:p@localhost:5432/app",
		"postgresql://u:p@localhost:5432/app": "pgx5://u:p@localhost:5432/app",
		"pgx5://already/converted":            "pgx5://already/converted",
	}
	for in, want := range cases {
		if got := MigrationURL(in); got != want {
			t.Fatalf("MigrationURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	if !strings.Contains(string(up), "idx_users_email_lower") {
		t.Fatalf("expected case-insensitive email index in schema")
	}
	if _, err := fs.ReadFile(migrationsFS, "migrations/0001_init.down.sql"); err != nil {
		t.Fatalf("read down migration: %v", err)
	}
}
