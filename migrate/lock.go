package migrate

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// Locker guards a whole run against concurrent migration processes. The
// runner acquires it before its first ledger read and releases it on every
// exit path, panics included.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// PostgresLock implements Locker with session-level advisory locks. Use it
// whenever more than one deployment can reach the same schema.
type PostgresLock struct {
	db *gorm.DB
}

func NewPostgresLock(db *gorm.DB) *PostgresLock {
	return &PostgresLock{db: db}
}

func (l *PostgresLock) Acquire(ctx context.Context, key string) (func(), error) {
	id := hashLockKey(key)

	if err := l.db.WithContext(ctx).Exec(`SELECT pg_advisory_lock(?)`, id).Error; err != nil {
		return nil, fmt.Errorf("failed to acquire advisory lock %d, %w", id, err)
	}

	release := func() {
		_ = l.db.Exec(`SELECT pg_advisory_unlock(?)`, id).Error
	}

	return release, nil
}

// LocalLock implements Locker with a process-local mutex. Enough for SQLite
// targets, which are single-writer anyway. This is the runner default.
type LocalLock struct {
	mu sync.Mutex
}

func (l *LocalLock) Acquire(ctx context.Context, _ string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	return func() { l.mu.Unlock() }, nil
}

// hashLockKey folds a string key into the int64 space pg_advisory_lock
// expects. FNV-1a.
func hashLockKey(key string) int64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= 1099511628211
	}

	return int64(h & 0x7FFFFFFFFFFFFFFF)
}
