// package session implements the playback session: which video is playing, where it resumes,
// when progress is saved, and how the playlist is navigated.
package session

import (
	"context"
	"time"

	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/services"
)

const (
	// SaveInterval is how often the position of the playing video is persisted.
	SaveInterval = 5 * time.Second
	// RemarkDebounce is how long note edits must pause before they are saved.
	RemarkDebounce = time.Second
	// SeekStep is the jump in seconds for relative seeks from the keyboard.
	SeekStep = 5.0
	// callTimeout bounds each request to the player or the server.
	callTimeout = 2 * time.Second
)

// ProgressStore reads and writes per-video progress and notes. Implemented by [services.ProgressClient].
type ProgressStore interface {
	GetProgress(ctx context.Context, path string) services.SavedProgress
	SaveProgress(ctx context.Context, path string, position, duration int64) error
	SaveRemark(ctx context.Context, path, text string) error
	ClearCompleted(ctx context.Context) (int64, error)
}

// FolderBrowser selects folders and manages the history. Implemented by [services.FolderClient].
type FolderBrowser interface {
	Browse(ctx context.Context, path string) (models.Listing, error)
	SelectFolder(ctx context.Context, path string) (*models.Selection, error)
	LastFolder(ctx context.Context) (*models.Selection, error)
	Videos(ctx context.Context) ([]models.Video, error)
	ListHistory(ctx context.Context) []models.Folder
	RemoveFromHistory(ctx context.Context, path string) error
}

// Player is the media player the session drives. Times are in seconds. Implemented by [player.MPV].
type Player interface {
	// Load replaces the current file and returns an id for the load, or 0 when the player has none.
	Load(ctx context.Context, source string) (int64, error)
	Play(ctx context.Context) error
	TogglePause(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	SeekBy(ctx context.Context, delta float64) error
	Position(ctx context.Context) (float64, error)
	Duration(ctx context.Context) (float64, error)
	Stop(ctx context.Context) error
	CycleSpeed(ctx context.Context) error
	ToggleMute(ctx context.Context) error
}

// Locator maps a video path to the source the player loads, such as a streaming URL.
type Locator func(path string) string

// State is a snapshot of the session for rendering.
type State struct {
	Playlist []models.Video
	Index    int
	Path     string
	Folder   models.Folder
	History  []models.Folder
}

// Current returns the active video, if any.
func (s State) Current() (models.Video, bool) {
	if s.Index < 0 || s.Index >= len(s.Playlist) {
		return models.Video{}, false
	}
	return s.Playlist[s.Index], true
}
