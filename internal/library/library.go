// package library scans the filesystem for videos and directories.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
)

// DefaultExtensions are the file extensions treated as videos when none are configured.
var DefaultExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm"}

// Scanner finds video files by extension.
type Scanner struct {
	extensions map[string]struct{}
}

// NewScanner creates a Scanner matching exts case-insensitively. An empty list uses [DefaultExtensions].
func NewScanner(exts []string) *Scanner {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	s := &Scanner{extensions: make(map[string]struct{}, len(exts))}
	for _, ext := range exts {
		s.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return s
}

// IsVideo reports whether name has one of the scanner's extensions.
func (s *Scanner) IsVideo(name string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FindVideos walks root recursively and returns the sorted paths of all videos beneath it.
//
// Unreadable subdirectories are skipped; an unreadable root is an error.
func (s *Scanner) FindVideos(root string) ([]string, error) {
	var videos []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if !d.IsDir() && s.IsVideo(d.Name()) {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(videos)
	return videos, nil
}

// Lookup returns the saved progress and note for a video path. Either may be nil.
type Lookup func(path string) (*models.Progress, *string)

// BuildVideos turns scanned paths into [models.Video] rows named relative to root.
func BuildVideos(root string, paths []string, lookup Lookup) []models.Video {
	videos := make([]models.Video, 0, len(paths))
	for _, p := range paths {
		display, err := filepath.Rel(root, p)
		if err != nil {
			display = filepath.Base(p)
		}

		v := models.Video{
			Path:        p,
			Filename:    filepath.Base(p),
			DisplayName: display,
		}
		if lookup != nil {
			v.Progress, v.Remarks = lookup(p)
		}
		videos = append(videos, v)
	}
	return videos
}

// CheckFolder validates that path can be selected as a library folder.
func CheckFolder(path string) error {
	if path == "" {
		return shared.ErrInvalidFolder
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrInvalidFolder, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", shared.ErrNotADirectory, path)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Browse lists the visible subdirectories of path.
//
// An empty or missing path falls back to home. A ".." entry pointing to the parent is
// prepended unless path is a filesystem root.
func Browse(path, home string) (models.Listing, error) {
	if path == "" || !Exists(path) {
		path = home
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	listing := models.Listing{CurrentPath: path, Items: []models.BrowseItem{}}

	entries, err := os.ReadDir(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrPermission):
			return listing, fmt.Errorf("%w: %s", shared.ErrPermission, path)
		case !isDir(path):
			return listing, fmt.Errorf("%w: %s", shared.ErrNotADirectory, path)
		default:
			return listing, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if parent := filepath.Dir(path); parent != path {
		listing.Items = append(listing.Items, models.BrowseItem{
			Name: "..", Path: parent, IsDir: true, IsParent: true,
		})
	}

	// ReadDir returns entries sorted by filename
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(path, name)
		if !e.IsDir() && !(e.Type()&fs.ModeSymlink != 0 && isDir(full)) {
			continue
		}

		listing.Items = append(listing.Items, models.BrowseItem{Name: name, Path: full, IsDir: true})
	}

	return listing, nil
}

// HomeDir returns the user's home directory, or the filesystem root when it cannot be determined.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return string(filepath.Separator)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
