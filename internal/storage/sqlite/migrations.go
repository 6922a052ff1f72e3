package sqlite

import (
	"context"
	"database/sql"
)

// schema holds one snapshot. Positions preserve contact and phone order.
const schema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
    name TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    birthday TEXT
);

CREATE TABLE IF NOT EXISTS phones (
    contact_name TEXT NOT NULL,
    position INTEGER NOT NULL,
    number TEXT NOT NULL,
    PRIMARY KEY (contact_name, position),
    FOREIGN KEY (contact_name) REFERENCES contacts(name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);
CREATE INDEX IF NOT EXISTS idx_phones_contact_name ON phones(contact_name);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
