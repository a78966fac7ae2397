package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/chis/tagwatch/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	logger *logging.Logger
}

// NewSQLiteStorage creates a new SQLite storage instance. It initializes the
// database connection, enables WAL mode, and runs migrations. Callers treat
// a failure here as "run without history", not as a fatal error.
func NewSQLiteStorage(dbPath string, logger *logging.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if err := s.enableWALMode(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Check history database ready at %s", dbPath)
	return s, nil
}

// enableWALMode enables Write-Ahead Logging mode for better concurrency.
func (s *SQLiteStorage) enableWALMode() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("failed to verify WAL mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("WAL mode not enabled, got: %s", mode)
	}
	return nil
}

// runMigrations executes all embedded migration files in order, tracking
// applied versions in a schema_migrations table.
func (s *SQLiteStorage) runMigrations() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || filepath.Ext(filename) != ".sql" {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
			s.logger.Warn("Skipping invalid migration filename: %s", filename)
			continue
		}

		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			continue
		}

		migrationSQL, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := s.db.Exec(string(migrationSQL)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", filename, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}

		s.logger.Debug("Applied migration %s", filename)
	}

	return nil
}

// retryWithBackoff executes a function with exponential backoff for
// SQLITE_BUSY errors. This handles transient locking issues in SQLite.
func (s *SQLiteStorage) retryWithBackoff(ctx context.Context, operation func() error) error {
	maxRetries := 5
	baseDelay := 10 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}

		if err.Error() != "database is locked" && err.Error() != "database table is locked" {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delay := baseDelay * time.Duration(1<<uint(attempt))
		if delay > time.Second {
			delay = time.Second
		}

		s.logger.Warn("Database locked, retrying in %v (attempt %d/%d)", delay, attempt+1, maxRetries)
		time.Sleep(delay)
	}

	return err
}

// LogCheckBatch records one cycle's outcomes in a single transaction - all
// entries succeed or all fail.
func (s *SQLiteStorage) LogCheckBatch(ctx context.Context, checks []CheckHistoryEntry) error {
	if len(checks) == 0 {
		return nil
	}

	return s.retryWithBackoff(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO check_history
			(container_name, image, current_tag, latest_version, status, error, check_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, entry := range checks {
			checkTime := entry.CheckTime
			if checkTime.IsZero() {
				checkTime = time.Now()
			}
			if _, err := stmt.ExecContext(ctx,
				entry.ContainerName, entry.Image, entry.CurrentTag,
				entry.LatestVersion, entry.Status, entry.Error, checkTime,
			); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert check entry for %s: %w", entry.ContainerName, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit check batch: %w", err)
		}
		return nil
	})
}

// GetRecentChecks returns history entries, newest first.
func (s *SQLiteStorage) GetRecentChecks(ctx context.Context, limit int) ([]CheckHistoryEntry, error) {
	query := `
		SELECT id, container_name, image, current_tag, latest_version, status, error, check_time
		FROM check_history
		ORDER BY check_time DESC, id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query check history: %w", err)
	}
	defer rows.Close()

	return scanCheckHistoryRows(rows)
}

// Close releases the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanCheckHistoryRows scans check history rows into a slice, handling the
// nullable columns.
func scanCheckHistoryRows(rows *sql.Rows) ([]CheckHistoryEntry, error) {
	history := make([]CheckHistoryEntry, 0)
	for rows.Next() {
		var entry CheckHistoryEntry
		var currentTag, latestVersion, errorMsg sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.ContainerName,
			&entry.Image,
			&currentTag,
			&latestVersion,
			&entry.Status,
			&errorMsg,
			&entry.CheckTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check history entry: %w", err)
		}

		if currentTag.Valid {
			entry.CurrentTag = currentTag.String
		}
		if latestVersion.Valid {
			entry.LatestVersion = latestVersion.String
		}
		if errorMsg.Valid {
			entry.Error = errorMsg.String
		}

		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check history rows: %w", err)
	}

	return history, nil
}
