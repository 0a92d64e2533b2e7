package database

import (
	"fmt"
	"net/url"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"

	memoryPath = ":memory:"
)

// Target is a parsed DATABASE_URL.
type Target struct {
	Dialect Dialect
	DSN     string
	Path    string
	Host    string
}

func (t Target) InMemory() bool {
	return t.Path == memoryPath
}

// ParseDatabaseURL accepts the SQLAlchemy-style urls the service has always
// used (sqlite:///./db.sqlite, postgresql://...) as well as bare sqlite paths.
func ParseDatabaseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sqliteTarget("./db.sqlite"), nil
	}

	scheme, rest, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		return sqliteTarget(raw), nil
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		// sqlite:///relative, sqlite:////absolute, sqlite:// and sqlite:///:memory:
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			path = memoryPath
		}
		return sqliteTarget(path), nil
	case "postgres", "postgresql":
		parsed, err := url.Parse(raw)
		if err != nil {
			return Target{}, fmt.Errorf("invalid postgres url: %w", err)
		}
		parsed.Scheme = "postgres"
		return Target{
			Dialect: DialectPostgres,
			DSN:     parsed.String(),
			Host:    parsed.Host,
		}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

func sqliteTarget(path string) Target {
	options := "_foreign_keys=on&_busy_timeout=5000"
	if path == memoryPath {
		return Target{
			Dialect: DialectSQLite,
			DSN:     "file::memory:?" + options,
			Path:    path,
		}
	}

	return Target{
		Dialect: DialectSQLite,
		DSN:     "file:" + path + "?" + options + "&_journal_mode=WAL",
		Path:    path,
	}
}
