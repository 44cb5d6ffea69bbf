package model

import "time"

// Migration is one ledger row. A row exists exactly when that version's
// up has completed and no later down for it has completed.
type Migration struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (Migration) TableName() string {
	return "migrations"
}
