package database

import (
	"context"
	"fmt"
	"strings"
)

// schema is written once with {{ID}} and {{TS}} placeholders that are
// replaced per dialect.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id {{ID}},
		nombre TEXT NOT NULL,
		telefono TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		empresa TEXT NOT NULL DEFAULT '',
		estatus TEXT NOT NULL,
		proximo_contacto {{TS}} NULL,
		ultimo_contacto {{TS}} NULL,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_estatus ON clients (estatus)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_proximo_contacto ON clients (proximo_contacto)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		id {{ID}},
		client_id INTEGER NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		tipo TEXT NOT NULL,
		contenido TEXT NOT NULL DEFAULT '',
		resultado TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		created_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_client ON interactions (client_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS status_changes (
		id {{ID}},
		client_id INTEGER NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		estatus_anterior TEXT NOT NULL,
		estatus_nuevo TEXT NOT NULL,
		created_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_status_changes_client ON status_changes (client_id, created_at)`,
}

func (c *Client) dialectReplacer() *strings.Replacer {
	if c.Driver == DriverPostgres {
		return strings.NewReplacer("{{ID}}", "SERIAL PRIMARY KEY", "{{TS}}", "TIMESTAMPTZ")
	}
	return strings.NewReplacer("{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{TS}}", "TIMESTAMP")
}

// Migrate creates the tables and indexes if they do not exist.
func (c *Client) Migrate(ctx context.Context) error {
	r := c.dialectReplacer()
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
