package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/AsgerSP/donation-platform/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var DB *sql.DB

func RunMigrations(dbConn *sql.DB, dbName string) error {
	driverInstance, err := mysql.WithInstance(dbConn, &mysql.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return fmt.Errorf("failed to create mysql migration driver: %w", err)
	}

	// Resolve the migrations directory relative to this file so migrations
	// run regardless of the process working directory.
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("failed to resolve current file path for migrations")
	}
	projectRoot := filepath.Join(filepath.Dir(currentFilePath), "..", "..")
	migrationsURL := "file://" + filepath.Join(projectRoot, "migrations")

	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "mysql", driverInstance)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance (check path '%s'): %w", migrationsURL, err)
	}

	slog.Info("Applying database migrations", "path", migrationsURL)
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, dirty, verr := m.Version()
		if verr == nil {
			slog.Error("Migration failed", "current_version", version, "dirty_state", dirty, "error", err)
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("Migrations: no changes.")
	} else {
		slog.Info("Migrations applied.")
	}
	return nil
}

func InitDB(appConfig *config.Config) error {
	var err error
	var dsn string

	dbCfg := appConfig.Database

	if dbCfg.DSN != "" {
		dsn = dbCfg.DSN
		if !strings.Contains(dsn, "multiStatements=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&multiStatements=true"
			} else {
				dsn += "?multiStatements=true"
			}
		}
		slog.Info("Using DATABASE_DSN for the MariaDB connection", "dsn_preview", strings.Split(dsn, "@")[0]+"@...")
	} else if dbCfg.Host != "" && dbCfg.User != "" && dbCfg.DBName != "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
			dbCfg.User,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
		)
		slog.Info("Assembled DSN from database config components")
	} else {
		return fmt.Errorf("insufficient MariaDB connection parameters: DSN or Host+User+DBName must be set")
	}

	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MariaDB connection: %w", err)
	}

	DB.SetConnMaxLifetime(time.Minute * 3)
	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(10)

	if err = DB.Ping(); err != nil {
		_ = DB.Close()
		return fmt.Errorf("failed to connect to MariaDB (ping failed): %w", err)
	}
	slog.Info("Connected to MariaDB.")

	if err = RunMigrations(DB, dbCfg.DBName); err != nil {
		_ = DB.Close()
		return fmt.Errorf("failed to run MariaDB migrations: %w", err)
	}

	slog.Info("Database initialized.")
	return nil
}
