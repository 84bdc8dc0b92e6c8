// Package postgres backs the document store with a single JSONB table.
// Each logical collection is a partition of the documents table; ordering
// and batching match the hosted backend the application was written for.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT        NOT NULL,
	id          TEXT        NOT NULL,
	doc         JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_date_idx
	ON documents (collection, (doc->>'date') DESC);
`

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and ensures the documents table exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	s.pool.Close()
}

func decodeRow(id string, raw []byte, createdAt time.Time) (store.Document, error) {
	doc := make(store.Document)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	doc["id"] = id
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = createdAt
	}
	return doc, nil
}

func (s *Store) List(ctx context.Context, collection string, opts store.ListOptions) ([]store.Document, error) {
	query := `
		SELECT id, doc, created_at
		FROM documents
		WHERE collection = $1
		ORDER BY doc->>'date' DESC NULLS LAST, created_at DESC
	`
	args := []any{collection}
	if opts.Limit > 0 {
		query += " LIMIT $2"
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			id        string
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		doc, err := decodeRow(id, raw, createdAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var (
		raw       []byte
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT doc, created_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return decodeRow(id, raw, createdAt)
}

func marshalDoc(doc store.Document) ([]byte, error) {
	stored := make(store.Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		stored[k] = v
	}
	return json.Marshal(stored)
}

func (s *Store) Create(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := uuid.NewString()
	raw, err := marshalDoc(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		collection, id, raw,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc store.Document) error {
	raw, err := marshalDoc(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE
		SET doc = EXCLUDED.doc,
		    updated_at = now()
	`, collection, id, raw)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, doc store.Document) error {
	raw, err := marshalDoc(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET doc = doc || $3,
		    updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, raw)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PutMany upserts one pre-chunked batch in a single round trip. Callers are
// responsible for keeping batches below the backend ceiling; batches are
// committed sequentially, never in parallel.
func (s *Store) PutMany(ctx context.Context, collection string, docs []store.Document) error {
	batch := &pgx.Batch{}
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}
		raw, err := marshalDoc(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", id, err)
		}
		batch.Queue(`
			INSERT INTO documents (collection, id, doc)
			VALUES ($1, $2, $3)
			ON CONFLICT (collection, id) DO UPDATE
			SET doc = EXCLUDED.doc,
			    updated_at = now()
		`, collection, id, raw)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range docs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to apply batch to %s: %w", collection, err)
		}
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE collection = $1`,
		collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return count, nil
}
