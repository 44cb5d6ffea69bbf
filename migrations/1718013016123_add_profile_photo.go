package migrations

import "bitwise74/schema-migrate/migrate"

// Nullable on purpose so existing rows need no backfill.
var addProfilePhoto = migrate.Definition{
	Version: "1718013016123",
	Name:    "add-profile-photo",
	Up: migrate.Statements(
		`ALTER TABLE users ADD COLUMN profile_photo text`,
	),
	Down: migrate.Statements(
		`ALTER TABLE users DROP COLUMN IF EXISTS profile_photo`,
	),
}
