// Package state records lint runs and their violations so results can be
// compared over time. SQLite (pure Go, modernc.org/sqlite) is the default;
// a postgres:// DSN selects PostgreSQL through pgx.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// Dialects understood by the store.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DefaultDSN is the history database used when none is configured.
const DefaultDSN = ".namelint/history.db"

var (
	// ErrRunNotFound is returned when no run matches an ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when an ID prefix matches several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Store persists lint runs.
type Store struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

// Open connects to the history database named by dsn, creating a SQLite
// file and its directory when needed, and applies pending migrations.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	driver, source, dialect := driverFor(dsn)
	if dialect == DialectSQLite && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	logger.Debug("opening history store", slog.String("dialect", dialect))

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection keeps ":memory:" databases alive and avoids
		// SQLITE_BUSY between writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	s := NewWithDB(db, dialect, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an open connection without migrating it.
func NewWithDB(db *sql.DB, dialect string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Dialect returns DialectSQLite or DialectPostgres.
func (s *Store) Dialect() string { return s.dialect }

// driverFor maps a DSN to a database/sql driver name, its data source and
// the store dialect.
func driverFor(dsn string) (driver, source, dialect string) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "pgx", dsn, DialectPostgres
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == ":memory:" {
		return "sqlite", "file::memory:?_pragma=foreign_keys(1)", DialectSQLite
	}
	return "sqlite", "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", DialectSQLite
}

// rebind rewrites "?" placeholders to "$1", "$2", ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func generateID() string {
	return uuid.New().String()
}
