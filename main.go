package main

import (
	"bitwise74/schema-migrate/config"
	"bitwise74/schema-migrate/db"
	"bitwise74/schema-migrate/migrate"
	"bitwise74/schema-migrate/migrations"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func main() {
	err := config.Setup()
	if err != nil {
		panic(err)
	}

	makeLogger()

	conn, err := db.New()
	if err != nil {
		zap.L().Fatal("Failed to open database", zap.Error(err))
	}

	reg, err := migrations.Registry()
	if err != nil {
		zap.L().Fatal("Failed to build migration registry", zap.Error(err))
	}

	opts := []migrate.Option{
		migrate.WithLockKey(viper.GetString("migrate.lock_key")),
	}

	if viper.GetString("db.driver") == "postgres" {
		opts = append(opts, migrate.WithLock(migrate.NewPostgresLock(conn)))
	}

	if viper.GetBool("dry-run") {
		opts = append(opts, migrate.WithDryRun())
	}

	runner := migrate.NewRunner(conn, reg, opts...)
	ctx := context.Background()

	switch cmd := pflag.Arg(0); cmd {
	case "up", "":
		runUp(ctx, runner)
	case "down":
		runDown(ctx, runner)
	case "status":
		runStatus(ctx, runner)
	case "pending":
		runPending(ctx, runner)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q, expected up, down, status or pending\n", cmd)
		os.Exit(2)
	}
}

func runUp(ctx context.Context, runner *migrate.Runner) {
	applied, err := runner.ApplyPending(ctx)
	if err != nil {
		var stmtErr *migrate.StatementError
		if errors.As(err, &stmtErr) {
			// Everything after the failing version was not attempted
			zap.L().Fatal("Migration run halted",
				zap.String("version", stmtErr.Version),
				zap.String("name", stmtErr.Name),
				zap.Strings("applied", applied),
				zap.Error(stmtErr.Err))
		}

		zap.L().Fatal("Migration run failed", zap.Error(err))
	}

	zap.L().Info("All pending migrations applied", zap.Int("count", len(applied)))
}

func runDown(ctx context.Context, runner *migrate.Runner) {
	version, err := runner.RevertLast(ctx)
	if err != nil {
		if errors.Is(err, migrate.ErrEmptyLedger) {
			zap.L().Fatal("Nothing to revert, the ledger is empty")
		}

		var stmtErr *migrate.StatementError
		if errors.As(err, &stmtErr) {
			zap.L().Fatal("Revert halted, ledger entry left intact",
				zap.String("version", stmtErr.Version),
				zap.String("name", stmtErr.Name),
				zap.Error(stmtErr.Err))
		}

		zap.L().Fatal("Revert failed", zap.Error(err))
	}

	zap.L().Info("Reverted migration", zap.String("version", version))
}

func runStatus(ctx context.Context, runner *migrate.Runner) {
	statuses, err := runner.Status(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read migration status", zap.Error(err))
	}

	for _, s := range statuses {
		switch {
		case s.Unknown:
			fmt.Printf("?  %s  %s  applied %s (unknown to this build)\n", s.Version, s.Name, s.AppliedAt.Format(time.RFC3339))
		case s.Applied:
			fmt.Printf("x  %s  %s  applied %s\n", s.Version, s.Name, s.AppliedAt.Format(time.RFC3339))
		default:
			fmt.Printf("-  %s  %s  pending\n", s.Version, s.Name)
		}
	}
}

func runPending(ctx context.Context, runner *migrate.Runner) {
	pend, err := runner.Pending(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read pending migrations", zap.Error(err))
	}

	for _, d := range pend {
		fmt.Printf("%s  %s\n", d.Version, d.Name)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
