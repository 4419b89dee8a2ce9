package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// PostgresBackend keeps each document as one JSONB row.
type PostgresBackend struct {
	db *sql.DB
}

// OpenPostgres connects with the pgx driver and ensures the documents table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	b := &PostgresBackend{db: db}
	if err := b.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) ensureTable(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS famdo_documents (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM famdo_documents WHERE key = $1`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return data, nil
}

func (b *PostgresBackend) Save(ctx context.Context, key string, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO famdo_documents (key, payload, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM famdo_documents WHERE key = $1`, key); err != nil {
		return fmt.Errorf("remove document %q: %w", key, err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
