// package models defines the data model for the video library
package models

import (
	"path/filepath"
	"time"
)

// CompletedPercent is the progress percentage at or above which a video counts as watched.
const CompletedPercent = 95.0

// CompletedTenths is [CompletedPercent] in tenths of a percent, the precision progress is shown at.
const CompletedTenths = 950

// Video is a playable file within the selected folder.
type Video struct {
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	DisplayName string    `json:"display_name"`
	Remarks     *string   `json:"remarks"`
	Progress    *Progress `json:"progress"`
}

// RemarkText returns the note for the video, or the empty string.
func (v Video) RemarkText() string {
	if v.Remarks == nil {
		return ""
	}
	return *v.Remarks
}

// Started reports whether playback has progressed past 0%. A saved row with no position
// (for example one holding only a note) still counts as new.
func (v Video) Started() bool {
	return v.Progress != nil && v.Progress.Percent > 0
}

// Completed reports whether the video has been watched through.
func (v Video) Completed() bool {
	return v.Progress != nil && v.Progress.Completed()
}

// Progress is a saved playback position. Position and Duration are in milliseconds.
type Progress struct {
	Position int64   `json:"position"`
	Duration int64   `json:"duration"`
	Percent  float64 `json:"percent"`
}

// NewProgress builds a [Progress] with Percent derived and rounded to one decimal.
//
// Returns nil when duration is unknown, since no percentage can be shown.
func NewProgress(position, duration int64) *Progress {
	if duration <= 0 {
		return nil
	}
	return &Progress{
		Position: position,
		Duration: duration,
		Percent:  float64(PercentTenths(position, duration)) / 10,
	}
}

// Completed reports whether the percentage reached [CompletedPercent].
func (p Progress) Completed() bool {
	return p.Percent >= CompletedPercent
}

// Ratio returns position/duration, or 0 when duration is not positive.
func Ratio(position, duration int64) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(position) / float64(duration)
}

// PercentTenths returns position/duration in tenths of a percent, rounded half up.
//
// It is 0 when either value is not positive. The clear-completed SQL evaluates the same
// expression, so the listed percent and the completion test can never disagree.
func PercentTenths(position, duration int64) int64 {
	if duration <= 0 || position <= 0 {
		return 0
	}
	return (position*2000 + duration) / (2 * duration)
}

// IsCompleted reports whether position/duration, as listed, reached [CompletedPercent].
func IsCompleted(position, duration int64) bool {
	return PercentTenths(position, duration) >= CompletedTenths
}

// Folder is an entry in the folder history.
type Folder struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	LastAccessed time.Time `json:"last_accessed"`
	AccessCount  int       `json:"access_count"`
}

// NewFolder returns a [Folder] named after the last element of path.
func NewFolder(path string) Folder {
	return Folder{Path: path, Name: filepath.Base(path)}
}

// BrowseItem is a directory shown in the folder picker.
type BrowseItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsDir    bool   `json:"is_dir"`
	IsParent bool   `json:"is_parent"`
}

// Listing is the result of browsing a directory.
type Listing struct {
	CurrentPath string       `json:"current_path"`
	Items       []BrowseItem `json:"items"`
}

// Selection is the result of committing a folder as the active playlist source.
type Selection struct {
	Folder     string  `json:"folder"`
	FolderName string  `json:"folder_name"`
	Videos     []Video `json:"videos"`
	Count      int     `json:"count"`
}
