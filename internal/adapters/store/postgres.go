package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements ports.CacheWriter and ports.CacheReader using
// PostgreSQL. Each record is one nsec3_caches row plus one nsec3_hashes
// row per entry.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ ports.CacheWriter = (*PostgresStore)(nil)
	_ ports.CacheReader = (*PostgresStore)(nil)
	_ ports.HashLookup  = (*PostgresStore)(nil)
)

// OpenPostgres opens a pgx-backed pool and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

// Migrate creates the cache tables if they do not exist yet.
func (r *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Write replaces any record stored under id in a single transaction.
// Entries are inserted in key order.
func (r *PostgresStore) Write(ctx context.Context, id string, record *domain.CacheRecord) (string, error) {
	if err := r.write(ctx, id, record); err != nil {
		return "", fmt.Errorf("%w: postgres: %w", domain.ErrOutputPersist, err)
	}
	r.logger.Debug("cache record stored in postgres", "identifier", id, "entries", len(record.Hashes))
	return "postgres:" + id, nil
}

func (r *PostgresStore) write(ctx context.Context, id string, record *domain.CacheRecord) error {
	tx, errTx := r.db.BeginTx(ctx, nil)
	if errTx != nil {
		return errTx
	}
	defer func() {
		if errRollback := tx.Rollback(); errRollback != nil && !errors.Is(errRollback, sql.ErrTxDone) {
			r.logger.Error("failed to rollback transaction", "error", errRollback)
		}
	}()

	// 1. Drop the previous record, entries cascade
	if _, err := tx.ExecContext(ctx, `DELETE FROM nsec3_caches WHERE identifier = $1`, id); err != nil {
		return err
	}

	// 2. Insert the record header
	headerQuery := `INSERT INTO nsec3_caches (identifier, run_id, domain, salt, iterations, wordlist_size)
	                VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, headerQuery, id, uuid.NewString(), record.Domain, record.Salt, int64(record.Iterations), record.WordlistSize); err != nil {
		return err
	}

	// 3. Insert entries
	if len(record.Hashes) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO nsec3_hashes (identifier, hash, label) VALUES ($1, $2, $3)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		keys := make([]string, 0, len(record.Hashes))
		for k := range record.Hashes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, hash := range keys {
			if _, err := stmt.ExecContext(ctx, id, hash, record.Hashes[hash]); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *PostgresStore) Load(ctx context.Context, id string) (*domain.CacheRecord, error) {
	query := `SELECT domain, salt, iterations, wordlist_size FROM nsec3_caches WHERE identifier = $1`
	var rec domain.CacheRecord
	var iterations int64
	errRow := r.db.QueryRowContext(ctx, query, id).Scan(&rec.Domain, &rec.Salt, &iterations, &rec.WordlistSize)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCacheNotFound, id)
	}
	if errRow != nil {
		return nil, errRow
	}
	rec.Iterations = uint32(iterations) // #nosec G115 -- column only ever holds uint32 values

	rows, errQuery := r.db.QueryContext(ctx, `SELECT hash, label FROM nsec3_hashes WHERE identifier = $1`, id)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			r.logger.Error("failed to close rows", "error", errClose)
		}
	}()

	rec.Hashes = map[string]string{}
	for rows.Next() {
		var hash, label string
		if errScan := rows.Scan(&hash, &label); errScan != nil {
			return nil, errScan
		}
		rec.Hashes[hash] = label
	}
	return &rec, rows.Err()
}

// Lookup resolves one encoded hash without loading the record.
func (r *PostgresStore) Lookup(ctx context.Context, id string, hash string) (string, bool, error) {
	query := `SELECT label FROM nsec3_hashes WHERE identifier = $1 AND hash = $2`
	var label string
	errRow := r.db.QueryRowContext(ctx, query, id, strings.ToLower(hash)).Scan(&label)
	if errors.Is(errRow, sql.ErrNoRows) {
		return "", false, nil
	}
	if errRow != nil {
		return "", false, errRow
	}
	return label, true, nil
}
