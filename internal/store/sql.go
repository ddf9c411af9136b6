package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/iiroan/formwatch/internal/validate"
)

const schema = `
CREATE TABLE IF NOT EXISTS taken_values (
	kind  TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (kind, value)
)`

// SQL stores claimed values in a taken_values table. Works with the sqlite3
// and postgres drivers.
type SQL struct {
	db     *sqlx.DB
	driver string
}

// NewSQL opens dsn with driver and creates the table if needed.
func NewSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	if dsn == "" && driver == "sqlite3" {
		dsn = ":memory:"
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}
	if driver == "sqlite3" {
		// an in-memory database lives per connection
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating taken_values: %w", err)
	}
	return &SQL{db: db, driver: driver}, nil
}

func (s *SQL) Taken(ctx context.Context, kind validate.Kind, value string) (bool, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM taken_values WHERE kind = ? AND value = ?`)
	if err := s.db.GetContext(ctx, &n, query, kind.String(), value); err != nil {
		return false, fmt.Errorf("querying taken_values: %w", err)
	}
	return n > 0, nil
}

func (s *SQL) Claim(ctx context.Context, kind validate.Kind, value string) error {
	query := s.db.Rebind(`INSERT INTO taken_values (kind, value) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, query, kind.String(), value); err != nil {
		return fmt.Errorf("claiming %s: %w", kind, err)
	}
	return nil
}

func (s *SQL) Release(ctx context.Context, kind validate.Kind, value string) error {
	query := s.db.Rebind(`DELETE FROM taken_values WHERE kind = ? AND value = ?`)
	if _, err := s.db.ExecContext(ctx, query, kind.String(), value); err != nil {
		return fmt.Errorf("releasing %s: %w", kind, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
