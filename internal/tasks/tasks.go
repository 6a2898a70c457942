package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
)

// Source lists a folder's videos, with progress and notes, without selecting it.
type Source interface {
	Folder(ctx context.Context, path string) (*models.Selection, error)
}

// FolderExportResult is the outcome of exporting a single folder.
type FolderExportResult struct {
	Folder  string `json:"folder"`
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	Videos  int    `json:"videos"`
	Watched int    `json:"watched"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
	Message string `json:"error,omitempty"`

	index int
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalFolders      int                  `json:"total_folders"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	OutputDirectory   string               `json:"output_directory"`
	ManifestPath      string               `json:"-"`
	Results           []FolderExportResult `json:"results"`
}

// Exporter runs exports against a [Source].
type Exporter struct {
	source Source
	logger *log.Logger
}

// NewExporter creates an Exporter reading folders from source.
func NewExporter(source Source, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{source: source, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
