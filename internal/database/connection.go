package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect opens the database and makes it the global connection
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open establishes a connection and creates the schema when missing.
// Driver is "sqlite3" (dsn is a file path or ":memory:") or "postgres".
func Open(driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "sqlite3":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			// Create data directory if it doesn't exist
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers, and every :memory:
		// connection would be a separate database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case "postgres":
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		err := DB.Close()
		DB = nil
		return err
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			prompt_lang TEXT NOT NULL DEFAULT '',
			answer_lang TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create datasets table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			dataset_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			item_key TEXT NOT NULL,
			front TEXT NOT NULL DEFAULT '',
			back TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (dataset_id, position),
			UNIQUE (dataset_id, item_key),
			FOREIGN KEY (dataset_id) REFERENCES datasets(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create items table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS learner_settings (
			learner_id TEXT PRIMARY KEY,
			rate REAL NOT NULL DEFAULT 1.5,
			prompt_voice TEXT NOT NULL DEFAULT '',
			answer_voice TEXT NOT NULL DEFAULT '',
			flipped BOOLEAN NOT NULL DEFAULT false,
			reveal_mode TEXT NOT NULL DEFAULT 'reveal',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create learner_settings table: %w", err)
	}

	return nil
}
