package migrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bitwise74/schema-migrate/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLockKey = "schema_migrate"

// Runner applies and reverts a registry's definitions against one database,
// recording progress in the migrations ledger table. Definitions always run
// strictly sequentially because later ones may depend on earlier schema
// state.
type Runner struct {
	db      *gorm.DB
	reg     *Registry
	lock    Locker
	lockKey string
	dryRun  bool
}

type Option func(*Runner)

// WithLock replaces the default process-local lock, typically with a
// PostgresLock when several deployments share one schema.
func WithLock(l Locker) Option {
	return func(r *Runner) { r.lock = l }
}

// WithLockKey changes the advisory lock key, so unrelated schemas on one
// server don't serialize against each other.
func WithLockKey(key string) Option {
	return func(r *Runner) {
		if key != "" {
			r.lockKey = key
		}
	}
}

// WithDryRun makes ApplyPending log the pending set without executing
// anything or touching the ledger.
func WithDryRun() Option {
	return func(r *Runner) { r.dryRun = true }
}

func NewRunner(db *gorm.DB, reg *Registry, opts ...Option) *Runner {
	r := &Runner{
		db:      db,
		reg:     reg,
		lock:    &LocalLock{},
		lockKey: defaultLockKey,
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Status describes one definition or ledger row.
type Status struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt time.Time

	// Unknown marks a ledger row with no matching definition, meaning the
	// schema was last touched by a newer build than this one.
	Unknown bool
}

// Pending returns every known definition absent from the ledger, in
// ascending version order.
func (r *Runner) Pending(ctx context.Context) ([]Definition, error) {
	var defs []Definition

	err := r.withLock(ctx, func() error {
		var err error
		defs, err = r.pending(ctx)
		return err
	})

	return defs, err
}

// ApplyPending applies every pending definition in order, each inside its
// own transaction together with its ledger row, so "applied" is never
// visible without "recorded". The first failure rolls that definition back
// and halts the run. The returned versions are the ones that committed
// before the halt; on halt err is a *StatementError naming the definition
// that stopped the run.
//
// Re-running after a halt is safe. Committed versions are skipped and the
// failed one is retried from its own up.
func (r *Runner) ApplyPending(ctx context.Context) ([]string, error) {
	var applied []string

	err := r.withLock(ctx, func() error {
		pend, err := r.pending(ctx)
		if err != nil {
			return err
		}

		if r.dryRun {
			for _, d := range pend {
				zap.L().Info("Would apply migration",
					zap.String("version", d.Version),
					zap.String("name", d.Name))
			}

			return nil
		}

		for _, d := range pend {
			// An overall deadline only takes effect between definitions.
			// Once up starts it runs to completion or failure.
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("deadline reached before migration %s, %w", d.Version, err)
			}

			if err := r.applyOne(d); err != nil {
				return err
			}

			applied = append(applied, d.Version)

			zap.L().Info("Applied migration",
				zap.String("version", d.Version),
				zap.String("name", d.Name))
		}

		return nil
	})

	return applied, err
}

// RevertLast reverts the most recently applied migration and deletes its
// ledger row in the same transaction. Only the head of the ledger may be
// reverted; anything older requires reverting its successors first. A
// failed down leaves the ledger row intact so the run can be inspected.
func (r *Runner) RevertLast(ctx context.Context) (string, error) {
	var reverted string

	err := r.withLock(ctx, func() error {
		if err := r.ensureLedger(ctx); err != nil {
			return err
		}

		var last model.Migration
		err := r.db.WithContext(ctx).
			Order("applied_at desc, version desc").
			First(&last).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyLedger
		}
		if err != nil {
			return fmt.Errorf("failed to read migrations ledger, %w", err)
		}

		d, ok := r.reg.Lookup(last.Version)
		if !ok {
			return &UnknownVersionError{Version: last.Version}
		}

		err = r.db.Transaction(func(tx *gorm.DB) error {
			if err := d.Down(tx); err != nil {
				return err
			}

			return tx.Delete(&model.Migration{}, "version = ?", d.Version).Error
		})
		if err != nil {
			return &StatementError{Version: d.Version, Name: d.Name, Err: err}
		}

		reverted = d.Version

		zap.L().Info("Reverted migration",
			zap.String("version", d.Version),
			zap.String("name", d.Name))
		return nil
	})

	return reverted, err
}

// Status reports every known definition with its applied state, in version
// order, followed by any ledger rows this build does not recognize.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	var out []Status

	err := r.withLock(ctx, func() error {
		applied, err := r.appliedRows(ctx)
		if err != nil {
			return err
		}

		for _, d := range r.reg.Definitions() {
			s := Status{Version: d.Version, Name: d.Name}

			if row, ok := applied[d.Version]; ok {
				s.Applied = true
				s.AppliedAt = row.AppliedAt
				delete(applied, d.Version)
			}

			out = append(out, s)
		}

		// Whatever is left in the ledger was written by a build this one
		// has never seen. Surfaced, not silently ignored.
		unknown := make([]Status, 0, len(applied))
		for _, row := range applied {
			unknown = append(unknown, Status{
				Version:   row.Version,
				Name:      row.Name,
				Applied:   true,
				AppliedAt: row.AppliedAt,
				Unknown:   true,
			})
		}

		sort.Slice(unknown, func(i, j int) bool {
			return lessVersion(unknown[i].Version, unknown[j].Version)
		})

		out = append(out, unknown...)
		return nil
	})

	return out, err
}

// applyOne runs a definition's up together with its ledger insert in one
// transaction. The caller's context is deliberately not attached, once a
// definition starts it runs to completion or failure.
func (r *Runner) applyOne(d Definition) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := d.Up(tx); err != nil {
			return err
		}

		entry := model.Migration{
			Version:   d.Version,
			Name:      d.Name,
			AppliedAt: time.Now().UTC(),
		}

		return tx.Create(&entry).Error
	})
	if err != nil {
		return &StatementError{Version: d.Version, Name: d.Name, Err: err}
	}

	return nil
}

func (r *Runner) pending(ctx context.Context) ([]Definition, error) {
	applied, err := r.appliedRows(ctx)
	if err != nil {
		return nil, err
	}

	var out []Definition
	for _, d := range r.reg.Definitions() {
		if _, ok := applied[d.Version]; !ok {
			out = append(out, d)
		}
	}

	return out, nil
}

func (r *Runner) appliedRows(ctx context.Context) (map[string]model.Migration, error) {
	if err := r.ensureLedger(ctx); err != nil {
		return nil, err
	}

	var rows []model.Migration
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read migrations ledger, %w", err)
	}

	byVer := make(map[string]model.Migration, len(rows))
	for _, row := range rows {
		byVer[row.Version] = row
	}

	return byVer, nil
}

func (r *Runner) ensureLedger(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&model.Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table, %w", err)
	}

	return nil
}

func (r *Runner) withLock(ctx context.Context, fn func() error) error {
	release, err := r.lock.Acquire(ctx, r.lockKey)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock, %w", err)
	}
	defer release()

	return fn()
}
