// Package migrations holds every schema migration shipped with the
// service, one file per change. Statements target PostgreSQL.
//
// Version numbers are the epoch milliseconds at which the migration was
// written. Down statements are always guarded with IF EXISTS so a reversal
// never fails just because a partial earlier run already removed the
// artifact.
package migrations

import "bitwise74/schema-migrate/migrate"

// Registry builds the registry of all shipped migrations. Fails if a new
// migration reuses a version or name.
func Registry() (*migrate.Registry, error) {
	return migrate.NewRegistry(
		addProfilePhoto,
		addManualOverrideFlag,
	)
}
