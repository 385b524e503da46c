package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/gggpa/tickscrape/pkg/model"
)

// Store is the optional duckdb archive of a run. Each security gets
// its own {sym}_ticks table.
type Store struct {
	dataSourceName string
	db             *sql.DB
}

func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("duckdb", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive %q: %w", dataSourceName, err)
	}
	return &Store{dataSourceName: dataSourceName, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure creates the security's tick table if needed and returns an
// archive bound to it.
func (s *Store) Ensure(ctx context.Context, security string) (*Archive, error) {
	table := tableName(security)

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (ts TIMESTAMP, type VARCHAR, value DOUBLE, size INTEGER)`, table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("unable to create table %s: %w", table, err)
	}

	return &Archive{db: s.db, table: table}, nil
}

// Archive writes one security's ticks. The Store owns the connection,
// Close on the archive is a no-op.
type Archive struct {
	db    *sql.DB
	table string
}

func (a *Archive) Write(tick model.Tick) error {
	ts, err := parseTimestamp(tick.Timestamp)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s VALUES (?, ?, ?, ?)`, a.table)
	if _, err := a.db.Exec(query, ts, tick.EventType, tick.Value, tick.Size); err != nil {
		return fmt.Errorf("unable to archive tick: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	return nil
}

// Count returns the total rows archived for the security, across all
// runs against this file.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, a.table)
	if err := a.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("unable to count rows: %w", err)
	}
	return n, nil
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q", s)
}

// tableName lowers the security into a sql identifier, anything
// outside [a-z0-9] becomes an underscore.
func tableName(security string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(security) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + "_ticks"
}
