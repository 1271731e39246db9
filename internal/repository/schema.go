package repository

// Schema definitions for the defaultdesk settings database.
// Compatible with both SQLite and PostgreSQL.

// schemaSettings holds the namespaced key-value settings: the service-side
// counterpart of browser local storage. expires_at is a Unix nanosecond
// timestamp; 0 means the value never expires.
const schemaSettings = `
CREATE TABLE IF NOT EXISTS settings (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    expires_at BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (namespace, key)
);

CREATE INDEX IF NOT EXISTS idx_settings_namespace ON settings(namespace);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaSettings,
	}
}
