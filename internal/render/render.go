// package render projects the session state into rows the terminal UI draws.
//
// Build is pure: the same inputs always give the same [View].
package render

import (
	"fmt"
	"math"

	"github.com/desertthunder/watchmark/internal/models"
)

// Status is the watch state of a video.
type Status int

const (
	StatusNew Status = iota
	StatusInProgress
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in-progress"
	case StatusDone:
		return "done"
	default:
		return "new"
	}
}

// VideoRow is a playlist entry ready for display.
type VideoRow struct {
	Path    string
	Name    string
	Status  Status
	Percent float64 // 0-100
	Fill    float64 // 0-1 share of the progress bar to fill
	Label   string
	Remarks bool
	Active  bool
}

// FolderRow is a folder history entry ready for display.
type FolderRow struct {
	Path     string
	Name     string
	Selected bool
}

// View is everything the list and sidebar show.
type View struct {
	Folder  string
	Videos  []VideoRow
	Folders []FolderRow
	Watched int
	Active  int
}

// Build projects the playlist, the active index, the folder history and the selected folder.
func Build(playlist []models.Video, index int, history []models.Folder, selected string) View {
	v := View{Folder: selected, Active: -1}

	v.Videos = make([]VideoRow, 0, len(playlist))
	for i, video := range playlist {
		row := Row(video)
		if i == index {
			row.Active = true
			v.Active = i
		}
		if row.Status == StatusDone {
			v.Watched++
		}
		v.Videos = append(v.Videos, row)
	}

	v.Folders = make([]FolderRow, 0, len(history))
	for _, f := range history {
		v.Folders = append(v.Folders, FolderRow{Path: f.Path, Name: f.Name, Selected: f.Path == selected})
	}
	return v
}

// Row builds the display row of a single video.
func Row(video models.Video) VideoRow {
	name := video.DisplayName
	if name == "" {
		name = video.Filename
	}

	row := VideoRow{
		Path:    video.Path,
		Name:    name,
		Remarks: video.RemarkText() != "",
	}

	p := video.Progress
	switch {
	case !video.Started():
		row.Status, row.Label = StatusNew, "○ New"
	case p.Completed():
		row.Status, row.Label = StatusDone, "✓ Done"
		row.Percent, row.Fill = p.Percent, 1
	default:
		row.Status = StatusInProgress
		row.Percent = p.Percent
		row.Fill = math.Max(0, p.Percent/100)
		row.Label = fmt.Sprintf("%d%%", int(math.Round(p.Percent)))
	}
	return row
}

// Summary is the one-line count shown above the list.
func (v View) Summary() string {
	if len(v.Videos) == 0 {
		return "no videos"
	}
	return fmt.Sprintf("%d videos · %d watched", len(v.Videos), v.Watched)
}
