package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const pingTimeout = 5 * time.Second

// Init opens a pooled connection for driver ("sqlite", "pgx" or "mysql").
func Init(driver, connection string) (*sqlx.DB, error) {
	dsn, err := prepareDSN(driver, connection)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

func prepareDSN(driver, connection string) (string, error) {
	switch driver {
	case "sqlite":
		// SQLite: create data directory if needed
		path := sqlitePath(connection)
		if path == "" {
			return connection, nil
		}
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
		return connection, nil
	case "mysql":
		// TIMESTAMP columns must scan into time.Time, stored as UTC.
		// UPDATE reports matched rows so an unchanged row is not mistaken for a missing one.
		cfg, err := mysql.ParseDSN(connection)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	default:
		return connection, nil
	}
}

// sqlitePath returns the file a sqlite DSN points at, or "" for in-memory databases.
func sqlitePath(connection string) string {
	path := strings.TrimPrefix(connection, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(connection, "mode=memory") {
		return ""
	}
	return path
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
