package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

const createSlotsTable = `CREATE TABLE IF NOT EXISTS record_slots (
	slot_key   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresKV stores slots as rows of record_slots.
type PostgresKV struct {
	db *sql.DB
}

func NewPostgresKV(db *sql.DB) *PostgresKV { return &PostgresKV{db: db} }

// EnsureSchema creates record_slots if it does not exist.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, createSlotsTable)
	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var payload string
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM record_slots WHERE slot_key = $1`, key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMiss
		}
		return "", err
	}
	return payload, nil
}

func (p *PostgresKV) Set(ctx context.Context, key string, value string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO record_slots (slot_key, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (slot_key)
		 DO UPDATE SET payload = EXCLUDED.payload,
		               updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	return err
}

func (p *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM record_slots WHERE slot_key = ANY($1)`, pq.Array(keys),
	)
	return err
}

func (p *PostgresKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT slot_key FROM record_slots WHERE slot_key LIKE $1 ESCAPE '\' ORDER BY slot_key`,
		globToLike(pattern),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// globToLike turns a "*" glob into a LIKE pattern, escaping LIKE metacharacters.
func globToLike(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteRune('%')
		case '%', '_', '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
