package docstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newhope/newhope-admin/internal/platform/db"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    dbtx
}

// NewPostgresStore wraps a pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.q.Query(ctx, `SELECT id, data, created_at, updated_at FROM documents
WHERE collection = $1 ORDER BY created_at, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", collection, err)
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := s.q.QueryRow(ctx, `SELECT id, data, created_at, updated_at FROM documents
WHERE collection = $1 AND id = $2`, collection, id).Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("docstore: get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection, id string, data any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := validName(collection, id); err != nil {
		return "", err
	}
	raw, err := encode(data)
	if err != nil {
		return "", err
	}
	_, err = s.q.Exec(ctx, `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`, collection, id, string(raw))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s/%s: %w", collection, id, ErrDuplicate)
		}
		return "", fmt.Errorf("docstore: insert %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (s *PostgresStore) Put(ctx context.Context, collection, id string, data any) error {
	if err := validName(collection, id); err != nil {
		return err
	}
	raw, err := encode(data)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("docstore: put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore: merge %s/%s: %w", collection, id, err)
	}
	tag, err := s.q.Exec(ctx, `UPDATE documents SET data = data || $3::jsonb, updated_at = now()
WHERE collection = $1 AND id = $2`, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("docstore: merge %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return 0, fmt.Errorf("docstore: delete collection %s: %w", collection, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE collection = $1`, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("docstore: count %s: %w", collection, err)
	}
	return n, nil
}

// WithTx runs fn in a RepeatableRead transaction. Nested calls reuse the
// outer transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.pool == nil {
		return fn(ctx, s)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PostgresStore{q: tx})
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

var _ Store = (*PostgresStore)(nil)
