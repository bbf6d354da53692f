package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memorySQLiteDSN is shared-cache so every connection in the process sees the
// same schema; tests rely on this.
const memorySQLiteDSN = "file::memory:?cache=shared&_foreign_keys=1"

// busyTimeoutMS bounds lock waits on the single database file, which both the
// HTTP server and the maintenance cron write to.
const busyTimeoutMS = 5000

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		var err error
		if dsn, err = sqliteDSN(cfg.Path); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: false,
	})
	if err != nil {
		return nil, err
	}

	if err := applyPragmas(db); err != nil {
		return nil, err
	}

	return db, nil
}

func sqliteDSN(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		return memorySQLiteDSN, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("sqlite: create data directory: %w", err)
		}
	}

	return fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=%d",
		filepath.ToSlash(path), busyTimeoutMS), nil
}

func applyPragmas(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS),
	} {
		if _, err := sqlDB.Exec(pragma); err != nil && err != sql.ErrConnDone {
			return err
		}
	}
	return nil
}
