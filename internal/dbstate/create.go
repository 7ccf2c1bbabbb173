package dbstate

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
)

// Database names one PostgreSQL database behind a URL.
type Database struct {
	Name           string
	User           string
	MaintenanceDSN string // same server, "postgres" database
}

// ParsePostgres extracts the database name and user from a postgres URL and
// builds the DSN of the maintenance database on the same server.
func ParsePostgres(databaseURL string) (Database, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return Database{}, fmt.Errorf("failed to parse URL: %w", err)
	}

	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Database{}, fmt.Errorf("unsupported scheme '%s' (expected 'postgres' or 'postgresql')", u.Scheme)
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return Database{}, fmt.Errorf("database name not specified in URL")
	}

	user := u.User.Username()
	if user == "" {
		user = "postgres"
	}

	maintenance := *u
	maintenance.Scheme = "postgres"
	maintenance.Path = "/postgres"
	return Database{Name: name, User: user, MaintenanceDSN: maintenance.String()}, nil
}

// IsProduction reports whether a database name suggests production data
func IsProduction(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "prod")
}

// DatabaseExists checks pg_database for name
func DatabaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query database existence: %w", err)
	}
	return exists, nil
}

// CreateDatabase creates name unless it exists. It reports whether the
// database was created.
func CreateDatabase(ctx context.Context, db *sql.DB, name string) (bool, error) {
	exists, err := DatabaseExists(ctx, db, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, fmt.Errorf("create database failed: %w", err)
	}
	return true, nil
}

// RedactURL masks the password of any URL embedded in s
func RedactURL(s string) string {
	parts := strings.Split(s, "://")
	for i := 1; i < len(parts); i++ {
		at := strings.Index(parts[i], "@")
		if at < 0 {
			continue
		}
		userinfo := parts[i][:at]
		if colon := strings.Index(userinfo, ":"); colon >= 0 {
			parts[i] = userinfo[:colon] + ":****" + parts[i][at:]
		}
	}
	return strings.Join(parts, "://")
}
