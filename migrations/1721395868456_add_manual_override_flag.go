package migrations

import "bitwise74/schema-migrate/migrate"

// The partial index only covers the handful of overridden rows instead of
// the whole table. Down drops the index before the column it depends on.
var addManualOverrideFlag = migrate.Definition{
	Version: "1721395868456",
	Name:    "add-manual-override-flag",
	Up: migrate.Statements(
		`ALTER TABLE users ADD COLUMN is_manual_override boolean NOT NULL DEFAULT false`,
		`CREATE INDEX IF NOT EXISTS idx_users_is_manual_override ON users (is_manual_override) WHERE is_manual_override IS TRUE`,
	),
	Down: migrate.Statements(
		`DROP INDEX IF EXISTS idx_users_is_manual_override`,
		`ALTER TABLE users DROP COLUMN IF EXISTS is_manual_override`,
	),
}
