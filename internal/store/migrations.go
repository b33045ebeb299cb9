package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all busdesk tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS notices (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id  TEXT NOT NULL,
		level      TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notices_client_id ON notices(client_id)`,

	`CREATE TABLE IF NOT EXISTS actions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id  TEXT NOT NULL,
		collection TEXT NOT NULL,
		entity_id  TEXT NOT NULL,
		field      TEXT NOT NULL DEFAULT '',
		old_value  TEXT NOT NULL DEFAULT '',
		new_value  TEXT NOT NULL DEFAULT '',
		outcome    TEXT NOT NULL,
		message    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_entity ON actions(collection, entity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_client_id ON actions(client_id)`,
}

// alterStatements are column additions that need special handling since
// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string // Optional index to create after column is added
}{
	{
		table:    "actions",
		column:   "owner_id",
		alterSQL: "ALTER TABLE actions ADD COLUMN owner_id TEXT NOT NULL DEFAULT ''",
	},
}

// migrate executes all schema DDL statements and alter migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil
		}
	}
	rows.Close()

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
