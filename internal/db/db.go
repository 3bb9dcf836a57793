// Package db provides the document store used by the career portal: a
// PostgreSQL JSONB implementation and an in-memory one.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks the database connection
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate creates the documents table and its indexes
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Get retrieves a document by collection and id
func (db *DB) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw []byte
	err := db.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	doc := &Document{ID: id}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Query retrieves documents matching all predicates. Equality predicates are
// pushed down as a JSONB containment filter; ordering and limit are applied
// after decoding so timestamps sort chronologically.
func (db *DB) Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}

	if len(opts.Where) > 0 {
		filter, err := containmentFilter(opts.Where)
		if err != nil {
			return nil, err
		}
		query += " AND data @> $2::jsonb"
		args = append(args, filter)
	}
	query += " ORDER BY id"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var raw []byte
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	return orderAndLimit(docs, opts), nil
}

// Create stores data under a new UUID
func (db *DB) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := db.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set replaces a document, creating it if needed
func (db *DB) Set(ctx context.Context, collection, id string, data map[string]any) error {
	var now time.Time
	if err := db.pool.QueryRow(ctx, `SELECT NOW()`).Scan(&now); err != nil {
		return fmt.Errorf("failed to read server time: %w", err)
	}

	doc, err := applyWrite(nil, data, now)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges partial into an existing document under a row lock
func (db *DB) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin update of %s/%s: %w", collection, id, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var raw []byte
	var now time.Time
	err = tx.QueryRow(ctx,
		`SELECT data, NOW() FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id,
	).Scan(&raw, &now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return fmt.Errorf("failed to load %s/%s: %w", collection, id, err)
	}

	var current map[string]any
	if err := json.Unmarshal(raw, &current); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	doc, err := applyWrite(current, partial, now)
	if err != nil {
		return err
	}
	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, id, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET data = $1, updated_at = NOW() WHERE collection = $2 AND id = $3`,
		updated, collection, id,
	); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit update of %s/%s: %w", collection, id, err)
	}
	return nil
}

// containmentFilter builds the JSONB object matched by @> for the predicates.
func containmentFilter(where []Predicate) ([]byte, error) {
	filter := map[string]any{}
	for _, p := range where {
		value, err := normalizeValue(p.Value)
		if err != nil {
			return nil, err
		}
		if err := setPath(filter, strings.Split(p.Field, "."), value); err != nil {
			return nil, fmt.Errorf("predicate %s: %w", p.Field, err)
		}
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filter: %w", err)
	}
	return raw, nil
}
