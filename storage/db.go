package storage

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskman-api/domain"
)

// Open connects to the database selected by the DSN and runs migrations.
// Postgres DSNs (postgres:// or key=value form) get the pgx driver, anything
// else is treated as a SQLite file path or :memory: DSN.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database DSN")
	}

	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Task{},
		&domain.SubTask{},
	); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

func isPostgresDSN(dsn string) bool {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return true
	}
	return strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=")
}

// weekdayExpr returns the SQL computing a day-of-week number (Sunday=1 ..
// Saturday=7) for the deadline column of the current dialect.
func weekdayExpr(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "EXTRACT(DOW FROM deadline)::int + 1"
	default:
		return "CAST(strftime('%w', deadline) AS INTEGER) + 1"
	}
}
