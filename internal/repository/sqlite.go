package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opensource-finance/defaultdesk/internal/domain"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

// openSQLite opens the settings database with modernc.org/sqlite (no CGO).
// The path ":memory:" opens a private in-memory database.
func openSQLite(cfg domain.RepositoryConfig) (*sql.DB, error) {
	dsn, err := sqliteDSN(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// An in-memory database lives only as long as its connection.
	if cfg.SQLitePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

func sqliteDSN(path string) (string, error) {
	switch path {
	case ":memory:":
		return "file::memory:", nil
	case "":
		path = "./defaultdesk.db"
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return fmt.Sprintf("file:%s?%s", path, sqlitePragmas), nil
}
