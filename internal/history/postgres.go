package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/paragraph"
)

// Schema is the SQL DDL for the attempts table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS attempts (
    id          BIGSERIAL PRIMARY KEY,
    tier        TEXT NOT NULL,
    paragraph   TEXT NOT NULL,
    transcript  TEXT NOT NULL DEFAULT '',
    score       INT NOT NULL,
    band        TEXT NOT NULL,
    correct     INT NOT NULL DEFAULT 0,
    close       INT NOT NULL DEFAULT 0,
    poor        INT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at DESC);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] on the given connection or
// pool. The caller is responsible for calling [PostgresStore.Migrate] before
// issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the attempts table and index
// if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Record inserts the attempt and fills in its ID and CreatedAt.
func (s *PostgresStore) Record(ctx context.Context, a *Attempt) error {
	const query = `
		INSERT INTO attempts (tier, paragraph, transcript, score, band, correct, close, poor)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`

	err := s.db.QueryRow(ctx, query,
		string(a.Tier), a.Paragraph, a.Transcript,
		a.Score, string(a.Band), a.Correct, a.Close, a.Poor,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// ListRecent returns up to limit attempts, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		return []Attempt{}, nil
	}

	const query = `
		SELECT id, tier, paragraph, transcript, score, band, correct, close, poor, created_at
		FROM attempts
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var tier, band string
		if err := rows.Scan(
			&a.ID, &tier, &a.Paragraph, &a.Transcript,
			&a.Score, &band, &a.Correct, &a.Close, &a.Poor, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("history: list scan: %w", err)
		}
		a.Tier = paragraph.Difficulty(tier)
		a.Band = align.Band(band)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return attempts, nil
}
