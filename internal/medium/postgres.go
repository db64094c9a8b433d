package medium

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/001_regions.sql
var regionsSchema string

// Postgres stores regions in two tables. Keys and scalars are BIGINT, so
// values at or above 2^63 are not supported.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dbURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := pool.Exec(ctx, regionsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Scalar(ctx context.Context, region uint8) (uint64, error) {
	var v int64
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM region_scalars WHERE region = $1`, int16(region),
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

func (p *Postgres) SetScalar(ctx context.Context, region uint8, v uint64) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO region_scalars (region, value) VALUES ($1, $2)
		 ON CONFLICT (region) DO UPDATE SET value = EXCLUDED.value`,
		int16(region), int64(v),
	)
	return err
}

func (p *Postgres) Read(ctx context.Context, region uint8, key uint64) ([]byte, error) {
	var v []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM region_entries WHERE region = $1 AND key = $2`,
		int16(region), int64(key),
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (p *Postgres) Write(ctx context.Context, region uint8, key uint64, value []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO region_entries (region, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (region, key) DO UPDATE SET value = EXCLUDED.value`,
		int16(region), int64(key), value,
	)
	return err
}

func (p *Postgres) Erase(ctx context.Context, region uint8, key uint64) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM region_entries WHERE region = $1 AND key = $2`,
		int16(region), int64(key),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Scan(ctx context.Context, region uint8) (Cursor, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT key, value FROM region_entries WHERE region = $1 ORDER BY key`,
		int16(region),
	)
	if err != nil {
		return nil, err
	}
	return &rowsCursor{rows: rows}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Truncate empties every region. Used to reset shared test databases.
func (p *Postgres) Truncate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE region_scalars, region_entries`)
	return err
}

type rowsCursor struct {
	rows pgx.Rows
	key  uint64
	val  []byte
	err  error
}

func (c *rowsCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var k int64
	if err := c.rows.Scan(&k, &c.val); err != nil {
		c.err = err
		c.rows.Close()
		return false
	}
	c.key = uint64(k)
	return true
}

func (c *rowsCursor) Key() uint64   { return c.key }
func (c *rowsCursor) Value() []byte { return c.val }

func (c *rowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *rowsCursor) Close() { c.rows.Close() }
