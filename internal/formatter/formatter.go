// package formatter formats playback times and exports a folder's video list to CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// FormatTime renders seconds as MM:SS. Minutes are not capped at 59.
//
// NaN, infinite and negative inputs render as 00:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatMillis renders a millisecond duration with [FormatTime].
func FormatMillis(ms int64) string {
	return FormatTime(float64(ms) / 1000)
}

// Export is the video list of one folder.
type Export struct {
	Folder models.Folder  `json:"folder"`
	Videos []models.Video `json:"videos"`
}

// NewExport builds an Export from a folder selection.
func NewExport(sel *models.Selection) *Export {
	return &Export{
		Folder: models.Folder{Path: sel.Folder, Name: sel.FolderName},
		Videos: sel.Videos,
	}
}

// Watched counts videos at or past the completion threshold.
func (e *Export) Watched() int {
	n := 0
	for _, v := range e.Videos {
		if v.Completed() {
			n++
		}
	}
	return n
}

func status(v models.Video) string {
	switch {
	case !v.Started():
		return "new"
	case v.Completed():
		return "done"
	default:
		return "in progress"
	}
}

func percent(v models.Video) string {
	if v.Progress == nil {
		return "0"
	}
	return strconv.FormatFloat(v.Progress.Percent, 'f', -1, 64)
}

// ExportToCSV converts an Export to CSV format with columns: Path, Name, Status, Percent, Position, Duration, Remarks
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Path", "Name", "Status", "Percent", "Position", "Duration", "Remarks"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range export.Videos {
		var position, duration string
		if v.Progress != nil {
			position, duration = FormatMillis(v.Progress.Position), FormatMillis(v.Progress.Duration)
		}
		record := []string{v.Path, v.DisplayName, status(v), percent(v), position, duration, v.RemarkText()}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to a Markdown checklist, with notes quoted under each video
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Folder.Name)
	fmt.Fprintf(&buf, "**Folder**: `%s`\n", export.Folder.Path)
	fmt.Fprintf(&buf, "**Videos**: %d\n", len(export.Videos))
	fmt.Fprintf(&buf, "**Watched**: %d\n\n", export.Watched())

	buf.WriteString("## Videos\n\n")
	for _, v := range export.Videos {
		mark := " "
		if v.Completed() {
			mark = "x"
		}

		progress := ""
		if v.Started() && !v.Completed() {
			progress = fmt.Sprintf(" (%s%%, %s / %s)", percent(v), FormatMillis(v.Progress.Position), FormatMillis(v.Progress.Duration))
		}
		fmt.Fprintf(&buf, "- [%s] %s%s\n", mark, v.DisplayName, progress)

		if note := v.RemarkText(); note != "" {
			for _, line := range strings.Split(note, "\n") {
				fmt.Fprintf(&buf, "  > %s\n", line)
			}
		}
	}
	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Folder: %s\n", export.Folder.Path)
	fmt.Fprintf(&buf, "Videos: %d (%d watched)\n\n", len(export.Videos), export.Watched())

	for i, v := range export.Videos {
		fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, v.DisplayName, status(v))
	}
	return buf.Bytes(), nil
}

// ExportToJSON converts an Export to indented JSON
func ExportToJSON(export *Export) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return append(data, '\n'), nil
}

// Render converts an Export to the given format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// DefaultFilename is {folder name}_videos.{format}.
func DefaultFilename(export *Export, format Format) string {
	name := export.Folder.Name
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "library"
	}
	return fmt.Sprintf("%s_videos.%s", name, format)
}

// WriteExport renders an Export and writes it to path, defaulting to [DefaultFilename].
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(export, format)
	}

	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
