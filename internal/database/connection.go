package database

import (
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is the global database connection
var DB *sqlx.DB

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// Config selects the database driver and location
type Config struct {
	Type       string // "sqlite" or "postgres"
	URL        string // Postgres connection string
	SQLitePath string
}

// Connect establishes the global database connection
func Connect(cfg Config) error {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Type {
	case "postgres":
		if cfg.URL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
		db, err = Open("postgres", cfg.URL)
	case "", "sqlite":
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrap(err, "failed to create data directory")
			}
		}
		db, err = Open("sqlite3", cfg.SQLitePath)
	default:
		return errors.Errorf("unsupported database type %q", cfg.Type)
	}
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Open connects to the database and creates the schema
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
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
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	attemptID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		attemptID = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				telegram_id BIGINT PRIMARY KEY,
				identity TEXT NOT NULL DEFAULT '',
				username TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				is_admin BOOLEAN NOT NULL DEFAULT FALSE,
				notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"decks", `
			CREATE TABLE IF NOT EXISTS decks (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				card_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			)`},
		{"flashcards", `
			CREATE TABLE IF NOT EXISTS flashcards (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				deck_id TEXT NOT NULL REFERENCES decks(id),
				front TEXT NOT NULL,
				back TEXT NOT NULL,
				last_grade INTEGER NOT NULL DEFAULT 0,
				consecutive_successes INTEGER NOT NULL DEFAULT 0,
				last_reviewed_at TIMESTAMP,
				next_review_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			)`},
		{"flashcards index", `CREATE INDEX IF NOT EXISTS idx_flashcards_user ON flashcards(user_id)`},
		{"attempts", `
			CREATE TABLE IF NOT EXISTS attempts (
				id ` + attemptID + `,
				user_identity TEXT NOT NULL,
				user_name TEXT,
				correct_count INTEGER,
				incorrect_count INTEGER,
				normalized_score DOUBLE PRECISION,
				category TEXT,
				occurred_at TIMESTAMP NOT NULL
			)`},
		{"attempts index", `CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_identity)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.sql); err != nil {
			return errors.Wrapf(err, "failed to create %s", stmt.name)
		}
	}
	return nil
}
