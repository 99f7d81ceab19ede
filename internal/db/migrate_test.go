package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/memohai/crosspost/internal/config"
)

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "crosspost",
		Password: "secret",
		Database: "crosspost",
		SSLMode:  "disable",
	}
}

func TestRunMigrateUnknownCommand(t *testing.T) {
	err := RunMigrate(nil, testPostgresConfig(), nil, "invalid", nil)
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRunMigrateForceArgs(t *testing.T) {
	if err := RunMigrate(nil, testPostgresConfig(), nil, MigrateForce, nil); err == nil {
		t.Fatal("expected error when force has no version")
	}
	err := RunMigrate(nil, testPostgresConfig(), nil, MigrateForce, []string{"abc"})
	if err == nil || !strings.Contains(err.Error(), "invalid version") {
		t.Fatalf("expected invalid version error, got %v", err)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	fsys, err := EmbeddedMigrations()
	if err != nil {
		t.Fatalf("EmbeddedMigrations() error = %v", err)
	}
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(ups) == 0 {
		t.Fatal("expected at least one up migration")
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(fsys, down); err != nil {
			t.Errorf("missing down migration for %s", up)
		}
	}
}
