package repositories

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/watchmark/internal/models"
)

// FolderRepository persists the folder history.
type FolderRepository struct {
	db  *sql.DB
	now clock
}

// NewFolderRepository creates a new FolderRepository with the given database connection
func NewFolderRepository(db *sql.DB) *FolderRepository {
	return &FolderRepository{db: db, now: utcNow}
}

// Add records an access to path, inserting it or bumping its access count and timestamp.
func (r *FolderRepository) Add(path string) error {
	if path == "" {
		return fmt.Errorf("add folder: empty path")
	}

	query := `
		INSERT INTO folder_history (folder_path, folder_name, last_accessed, access_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(folder_path) DO UPDATE SET
			last_accessed = excluded.last_accessed,
			access_count = folder_history.access_count + 1
	`

	if _, err := r.db.Exec(query, path, filepath.Base(path), r.now()); err != nil {
		return fmt.Errorf("failed to add folder to history: %w", err)
	}
	return nil
}

// List returns up to limit folders, most recently accessed first. A non-positive limit returns all.
func (r *FolderRepository) List(limit int) ([]models.Folder, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT folder_path, folder_name, last_accessed, access_count
		FROM folder_history
		ORDER BY last_accessed DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query folder history: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.Path, &f.Name, &f.LastAccessed, &f.AccessCount); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folder history: %w", err)
	}
	return folders, nil
}

// Remove deletes path from the history and reports whether it was present.
func (r *FolderRepository) Remove(path string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM folder_history WHERE folder_path = ?", path)
	if err != nil {
		return false, fmt.Errorf("failed to remove folder from history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}
