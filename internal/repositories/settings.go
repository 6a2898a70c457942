package repositories

import (
	"database/sql"
	"fmt"
)

const lastFolderKey = "last_folder"

// SettingsRepository stores key/value settings.
type SettingsRepository struct {
	db  *sql.DB
	now clock
}

// NewSettingsRepository creates a new SettingsRepository with the given database connection
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db, now: utcNow}
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, r.now()); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key or [ErrNotFound].
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	if err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value); err != nil {
		return "", notFound(err, "setting", key)
	}
	return value, nil
}

// SetLastFolder remembers the most recently selected folder.
func (r *SettingsRepository) SetLastFolder(path string) error {
	return r.Set(lastFolderKey, path)
}

// LastFolder returns the most recently selected folder or [ErrNotFound].
func (r *SettingsRepository) LastFolder() (string, error) {
	return r.Get(lastFolderKey)
}
