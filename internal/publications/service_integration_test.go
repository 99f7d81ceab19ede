package publications

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memohai/crosspost/internal/db"
	"github.com/memohai/crosspost/internal/db/sqlc"
	"github.com/memohai/crosspost/internal/logger"
)

// setupIntegrationTest migrates the database behind TEST_POSTGRES_DSN and empties the ledger.
func setupIntegrationTest(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip integration test: TEST_POSTGRES_DSN is not set")
	}

	fsys, err := db.EmbeddedMigrations()
	if err != nil {
		t.Fatalf("embedded migrations: %v", err)
	}
	src, err := iofs.New(fsys, ".")
	if err != nil {
		t.Fatalf("migration source: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot init migrations: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	_, _ = m.Close()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skip integration test: database ping failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, "TRUNCATE publications"); err != nil {
		t.Fatalf("truncate publications: %v", err)
	}
	return NewService(logger.Discard(), sqlc.New(pool), DefaultMaxRecords), pool
}

func countPublications(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM publications").Scan(&n); err != nil {
		t.Fatalf("count publications: %v", err)
	}
	return n
}

func TestIntegrationRecordPrunesOldest(t *testing.T) {
	svc, pool := setupIntegrationTest(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i <= DefaultMaxRecords; i++ {
		id := strconv.Itoa(i)
		created, err := svc.Record(ctx, RecordRequest{
			Platform:   "youtube",
			ChannelID:  "UC1",
			ContentID:  "vid" + id,
			ContentURL: "https://youtu.be/vid" + id,
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if !created {
			t.Fatalf("record %d: expected a new entry", i)
		}
	}

	if got := countPublications(t, pool); got != DefaultMaxRecords {
		t.Fatalf("publications = %d, want %d", got, DefaultMaxRecords)
	}
	var oldest int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM publications WHERE content_id = 'vid0'").Scan(&oldest); err != nil {
		t.Fatal(err)
	}
	if oldest != 0 {
		t.Fatal("oldest publication should have been pruned")
	}

	items, err := svc.List(ctx, "youtube", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ContentID != "vid"+strconv.Itoa(DefaultMaxRecords) {
		t.Fatalf("newest entry = %+v", items)
	}
}

func TestIntegrationRecordDuplicateIsNoop(t *testing.T) {
	svc, pool := setupIntegrationTest(t)
	ctx := context.Background()
	req := RecordRequest{Platform: "telegram", ChannelID: "@news", ContentID: "42", ContentURL: "https://t.me/news/42"}

	created, err := svc.Record(ctx, req)
	if err != nil || !created {
		t.Fatalf("first record: created=%v err=%v", created, err)
	}
	req.ContentURL = "https://t.me/news/42?changed"
	created, err = svc.Record(ctx, req)
	if err != nil {
		t.Fatalf("duplicate record: %v", err)
	}
	if created {
		t.Fatal("duplicate must not create a new entry")
	}
	if got := countPublications(t, pool); got != 1 {
		t.Fatalf("publications = %d, want 1", got)
	}
	var url string
	if err := pool.QueryRow(ctx, "SELECT content_url FROM publications WHERE platform = 'telegram' AND content_id = '42'").Scan(&url); err != nil {
		t.Fatal(err)
	}
	if url != "https://t.me/news/42" {
		t.Fatalf("duplicate overwrote the stored entry: %s", url)
	}
}
