package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("nsec3gen_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := OpenPostgres(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to open db: %s", err)
	}

	return db, func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostgresStore(db, nil)
	ctx := context.Background()

	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	// Migrations are idempotent.
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	// 1. Write and read back
	if _, err := repo.Write(ctx, sampleID, sampleRecord()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rec, err := repo.Load(ctx, sampleID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Domain != "example.com" || len(rec.Hashes) != 2 {
		t.Errorf("Unexpected record: %+v", rec)
	}

	// 2. Replace
	next := sampleRecord()
	next.Hashes = map[string]string{"zzzz": "api"}
	next.WordlistSize = 1
	if _, err := repo.Write(ctx, sampleID, next); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	rec, err = repo.Load(ctx, sampleID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(rec.Hashes) != 1 || rec.WordlistSize != 1 {
		t.Errorf("Expected replaced record, got %+v", rec)
	}

	// 3. Lookup
	label, found, err := repo.Lookup(ctx, sampleID, "ZZZZ")
	if err != nil || !found || label != "api" {
		t.Errorf("Lookup = %q, %v, %v", label, found, err)
	}
}
