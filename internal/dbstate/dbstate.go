// Package dbstate reports which migration files Sequel has applied to the
// application database. It only reads; running migrations is left to
// `sequel -m`.
package dbstate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tomrplummer/blue-eyes/internal/utils"
)

// MigrationsTable is the table Sequel's timestamp migrator records applied
// files in.
const MigrationsTable = "schema_migrations"

// Dialect is a supported database flavor.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Driver returns the database/sql driver name.
func (d Dialect) Driver() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

func (d Dialect) tableExistsQuery() string {
	if d == Postgres {
		return "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1"
	}
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

// Target is a parsed DATABASE_URL.
type Target struct {
	Dialect Dialect
	DSN     string
}

// ParseURL maps a Sequel connection URL to a driver DSN. Relative sqlite
// paths are resolved against root.
func ParseURL(url, root string) (Target, error) {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return Target{}, fmt.Errorf("invalid database url %q: missing scheme", url)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		if rest == "" {
			return Target{}, fmt.Errorf("invalid database url %q: missing path", url)
		}
		path := rest
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		return Target{Dialect: SQLite, DSN: path}, nil
	case "postgres", "postgresql":
		return Target{Dialect: Postgres, DSN: "postgres://" + rest}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database url scheme %q (use sqlite:// or postgres://)", scheme)
	}
}

// Open opens the database behind target.
func Open(target Target) (*sql.DB, error) {
	db, err := sql.Open(target.Dialect.Driver(), target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", target.Dialect, err)
	}
	return db, nil
}

// Reader reads migration state from an open database.
type Reader struct {
	db      *sql.DB
	dialect Dialect
}

// NewReader creates a Reader.
func NewReader(db *sql.DB, dialect Dialect) *Reader {
	return &Reader{db: db, dialect: dialect}
}

// Applied returns the filenames recorded as applied. A database that was
// never migrated has no schema_migrations table and yields nothing.
func (r *Reader) Applied(ctx context.Context) (map[string]bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, r.dialect.tableExistsQuery(), MigrationsTable).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check for %s: %w", MigrationsTable, err)
	}
	applied := make(map[string]bool)
	if count == 0 {
		return applied, nil
	}

	rows, err := r.db.QueryContext(ctx, "SELECT filename FROM "+MigrationsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MigrationsTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", MigrationsTable, err)
		}
		applied[filename] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MigrationsTable, err)
	}

	return applied, nil
}

// Migration is one migration file and whether it has run.
type Migration struct {
	Filename string
	Version  int64
	Applied  bool
}

// Report compares migration files with the database.
type Report struct {
	Migrations []Migration
	Orphaned   []string // applied in the database, file no longer present
}

// Pending returns the migrations that have not run.
func (r *Report) Pending() []Migration {
	var pending []Migration
	for _, m := range r.Migrations {
		if !m.Applied {
			pending = append(pending, m)
		}
	}
	return pending
}

// Status builds a Report for the .rb files in dir.
func Status(ctx context.Context, r *Reader, dir string) (*Report, error) {
	files, err := utils.FindFiles(dir, ".rb")
	if err != nil {
		return nil, err
	}

	applied, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	seen := make(map[string]bool, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		seen[name] = true
		report.Migrations = append(report.Migrations, Migration{
			Filename: name,
			Version:  version(name),
			Applied:  applied[name],
		})
	}
	for name := range applied {
		if !seen[name] {
			report.Orphaned = append(report.Orphaned, name)
		}
	}
	sort.Strings(report.Orphaned)

	return report, nil
}

// version parses the leading timestamp of a migration filename, 0 when absent.
func version(filename string) int64 {
	prefix, _, _ := strings.Cut(filename, "_")
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
