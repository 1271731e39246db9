// Package repository provides the durable settings store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// SQLRepository implements domain.Store on a settings table using
// database/sql. Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db        *sql.DB
	driver    string
	namespace string
	now       func() time.Time
}

// New opens the database described by cfg and runs migrations.
// The "none" driver returns nil, nil.
func New(cfg domain.RepositoryConfig, namespace string) (*SQLRepository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if namespace == "" {
		namespace = domain.DefaultNamespace
	}

	repo := &SQLRepository{
		db:        db,
		driver:    cfg.Driver,
		namespace: namespace,
		now:       time.Now,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key, or nil, nil when it is absent
// or expired.
func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	query := `
		SELECT value, expires_at
		FROM settings
		WHERE namespace = ? AND key = ?
	`

	var value string
	var expiresAt int64

	err := r.db.QueryRowContext(ctx, r.rebind(query), r.namespace, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if expiresAt != 0 && r.now().UnixNano() > expiresAt {
		return nil, nil
	}
	return []byte(value), nil
}

// Set upserts key. A zero ttl stores the value without expiry.
func (r *SQLRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	now := r.now().UTC()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}

	query := `
		INSERT INTO settings (namespace, key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		r.namespace, key, string(value), expiresAt, now,
	)
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM settings WHERE namespace = ? AND key = ?`
	_, err := r.db.ExecContext(ctx, r.rebind(query), r.namespace, key)
	return err
}

// Keys lists the live keys in the namespace, sorted.
func (r *SQLRepository) Keys(ctx context.Context) ([]string, error) {
	query := `
		SELECT key
		FROM settings
		WHERE namespace = ? AND (expires_at = 0 OR expires_at >= ?)
		ORDER BY key
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), r.namespace, r.now().UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
