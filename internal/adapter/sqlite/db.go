package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if necessary) the SQLite database backing the store.
// A non-empty dsn is used verbatim; otherwise a DSN is built from path with
// the service defaults. A failure here is fatal for the whole run: the
// storage medium is unreachable.
func Open(path, dsn string) (*sql.DB, error) {
	if dsn == "" {
		var err error
		dsn, err = buildDSN(path)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// One writer at a time matches the single-run ingestion model and keeps
	// SQLite locking honest; readers go through WAL.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return db, nil
}

func buildDSN(path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	// busy_timeout covers read-back queries overlapping a single-record
	// write; WAL lets the query tool and dashboard read during ingestion.
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
