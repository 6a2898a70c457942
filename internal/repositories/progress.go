package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/watchmark/internal/models"
)

// ProgressRecord is a row of the video_progress table.
type ProgressRecord struct {
	Path        string
	Position    int64 // milliseconds
	Duration    int64 // milliseconds, 0 when unknown
	Remarks     *string
	LastWatched time.Time
	WatchCount  int
}

// Progress converts the record into a [models.Progress], nil when the duration is unknown.
func (p ProgressRecord) Progress() *models.Progress {
	return models.NewProgress(p.Position, p.Duration)
}

// ProgressRepository persists playback progress and notes keyed by video path.
type ProgressRepository struct {
	db  *sql.DB
	now clock
}

// NewProgressRepository creates a new ProgressRepository with the given database connection
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db, now: utcNow}
}

// Save inserts or updates the position for path.
//
// A non-positive duration keeps the previously stored duration. Every save bumps the watch count.
func (r *ProgressRepository) Save(path string, position, duration int64) error {
	if path == "" {
		return fmt.Errorf("save progress: empty path")
	}

	query := `
		INSERT INTO video_progress (file_path, last_position, duration, last_watched, watch_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(file_path) DO UPDATE SET
			last_position = excluded.last_position,
			duration = COALESCE(excluded.duration, video_progress.duration),
			last_watched = excluded.last_watched,
			watch_count = video_progress.watch_count + 1
	`

	if _, err := r.db.Exec(query, path, position, nullIfNotPositive(duration), r.now()); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Get returns the progress record for path or [ErrNotFound].
func (r *ProgressRepository) Get(path string) (*ProgressRecord, error) {
	query := `
		SELECT file_path, last_position, duration, remarks, last_watched, watch_count
		FROM video_progress
		WHERE file_path = ?
	`

	rec, err := scanProgress(r.db.QueryRow(query, path))
	if err != nil {
		return nil, notFound(err, "progress", path)
	}
	return rec, nil
}

// SaveRemark stores the note for path, creating a zero-position record when none exists.
func (r *ProgressRepository) SaveRemark(path, remark string) error {
	if path == "" {
		return fmt.Errorf("save remark: empty path")
	}

	query := `
		INSERT INTO video_progress (file_path, last_position, last_watched, remarks)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET remarks = excluded.remarks
	`

	if _, err := r.db.Exec(query, path, r.now(), remark); err != nil {
		return fmt.Errorf("failed to save remark: %w", err)
	}
	return nil
}

// GetRemark returns the note for path, or the empty string when there is none.
func (r *ProgressRepository) GetRemark(path string) (string, error) {
	var remark sql.NullString
	err := r.db.QueryRow("SELECT remarks FROM video_progress WHERE file_path = ?", path).Scan(&remark)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query remark: %w", err)
	}
	return remark.String, nil
}

// ClearCompleted removes records whose listed percent is at or above [models.CompletedPercent]
// and returns how many were removed.
//
// The WHERE clause is [models.PercentTenths] in integer SQL. Records with an unknown duration are kept.
func (r *ProgressRepository) ClearCompleted() (int64, error) {
	query := `
		DELETE FROM video_progress
		WHERE duration IS NOT NULL AND duration > 0 AND last_position > 0
		AND (last_position * 2000 + duration) / (2 * duration) >= ?
	`

	result, err := r.db.Exec(query, models.CompletedTenths)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// Delete removes the record for path.
func (r *ProgressRepository) Delete(path string) error {
	if _, err := r.db.Exec("DELETE FROM video_progress WHERE file_path = ?", path); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

// List returns all records, most recently watched first.
func (r *ProgressRepository) List() ([]ProgressRecord, error) {
	query := `
		SELECT file_path, last_position, duration, remarks, last_watched, watch_count
		FROM video_progress
		ORDER BY last_watched DESC, id DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(s scanner) (*ProgressRecord, error) {
	var (
		rec      ProgressRecord
		duration sql.NullInt64
		remarks  sql.NullString
	)

	if err := s.Scan(&rec.Path, &rec.Position, &duration, &remarks, &rec.LastWatched, &rec.WatchCount); err != nil {
		return nil, err
	}

	rec.Duration = duration.Int64
	if remarks.Valid {
		rec.Remarks = &remarks.String
	}
	return &rec, nil
}
