package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migration commands understood by Migrate
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// gooseLogger routes goose output through zap
type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.sugar.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.sugar.Fatalf(format, v...) }

// Migrate runs one goose command against the migrations in dir
func Migrate(db *sql.DB, dir, command string, logger *zap.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetLogger(gooseLogger{sugar: logger.Named("goose").Sugar()})

	var err error
	switch command {
	case MigrateUp:
		err = goose.Up(db, dir)
	case MigrateDown:
		err = goose.Down(db, dir)
	case MigrateStatus:
		err = goose.Status(db, dir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations %s: %w", command, err)
	}

	if version, verr := goose.GetDBVersion(db); verr == nil {
		logger.Info("Schema version", zap.Int64("version", version), zap.String("command", command))
	}
	return nil
}

// RunMigrations applies every pending migration
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	logger.Info("Checking for pending migrations", zap.String("dir", migrationsDir))
	return Migrate(db, migrationsDir, MigrateUp, logger)
}
