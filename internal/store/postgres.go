package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTable = "documents"

// Postgres stores documents as rows of a single key/content table
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres connects, pings, and creates the table if needed
func OpenPostgres(ctx context.Context, databaseURL, table string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres store requires a database URL")
	}
	if table == "" {
		table = defaultTable
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// EnsureSchema creates the documents table
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		content BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, p.table))
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var content []byte
	err := p.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT content FROM %s WHERE key = $1`, p.table),
		key,
	).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return content, nil
}

func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, content) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()`, p.table),
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
