package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"inkbound/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the local sqlite database holding client-side state: the
// single logged-in-user slot and a small key/value settings table.
type DB struct {
	*sql.DB
}

// Open opens (and if needed initializes) the local database
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single local client, but WAL keeps concurrent reads cheap
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS session (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		payload TEXT NOT NULL,
		saved_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// SaveSession stores the logged-in user in the single session slot,
// replacing whatever was there (no multi-account support).
func (d *DB) SaveSession(user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		INSERT INTO session (slot, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`
	if _, err := d.Exec(query, string(payload), time.Now()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted user, or nil when no one is logged in
func (d *DB) LoadSession() (*models.User, error) {
	var payload string
	err := d.QueryRow(`SELECT payload FROM session WHERE slot = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &user, nil
}

// ClearSession empties the session slot
func (d *DB) ClearSession() error {
	if _, err := d.Exec(`DELETE FROM session WHERE slot = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// GetSetting returns the stored value for key, or "" when unset
func (d *DB) GetSetting(key string) (string, error) {
	var value string
	err := d.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value
func (d *DB) SetSetting(key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := d.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// Settings keys used by the client
const (
	SettingBaseURL      = "api_base_url"
	SettingDetectedHost = "auto_detected_host"
)
