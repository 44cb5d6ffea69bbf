// Package migrate applies an ordered set of reversible schema migrations
// to a database and records progress in a ledger table.
package migrate

import "gorm.io/gorm"

// Definition describes one reversible schema change. Up and Down receive a
// live transaction and must let engine errors propagate. A failed statement
// aborts the whole definition.
//
// Definitions are static and permanent. Once a version has shipped it is
// never edited or removed.
type Definition struct {
	// Version orders definitions. By convention an epoch-millisecond
	// timestamp encoded as a decimal string.
	Version string

	// Name shows up in the ledger and in logs. Never used for ordering.
	Name string

	Up   func(tx *gorm.DB) error
	Down func(tx *gorm.DB) error
}

// Statements returns a procedure that executes the given DDL statements in
// order, stopping at the first failure. The statements pass through to the
// engine unmodified.
//
// Down procedures should list their statements in reverse creation order so
// dependent artifacts go first: an index before its column, a foreign key
// before the referenced column.
func Statements(stmts ...string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, s := range stmts {
			if err := tx.Exec(s).Error; err != nil {
				return err
			}
		}

		return nil
	}
}
