package tasks

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/watchmark/internal/formatter"
	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk folder exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: md)
	OutputDir  string           // Output directory (default: watchmark_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Folder fetches per second (default: 5)
}

type folderJob struct {
	index     int
	selection *models.Selection
}

// BulkExport exports every folder in paths to its own file in opts.OutputDir.
//
// Failures are reported per folder. The returned error is set only when the output
// directory or manifest cannot be written, or ctx is cancelled.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, paths []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: folder source not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("watchmark_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(paths)
	result := &BulkExportResult{
		TotalFolders:    total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]FolderExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan folderJob, total)
	results := make(chan FolderExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchFolderUpdate(i+1, total, path))
			sel, err := e.source.Folder(ctx, path)
			if err != nil {
				results <- FolderExportResult{
					Folder: path,
					Name:   filepath.Base(path),
					Error:  fmt.Errorf("failed to fetch folder: %w", err),
					index:  i,
				}
				continue
			}
			jobs <- folderJob{index: i, selection: sel}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res))
		} else {
			res.Message = res.Error.Error()
			result.FailedExports++
			e.logger.Warn("folder export failed", "folder", res.Folder, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, total, res))
		}
		result.Results = append(result.Results, res)
	}
	slices.SortFunc(result.Results, func(a, b FolderExportResult) int { return cmp.Compare(a.index, b.index) })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes folders from the jobs channel until it closes.
func (e *Exporter) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan folderJob, results chan<- FolderExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- exportFolder(job, opts)
	}
}

// exportFolder writes one folder. Files are numbered so folders sharing a name do not collide.
func exportFolder(j folderJob, opts BulkExportOpts) FolderExportResult {
	export := formatter.NewExport(j.selection)
	res := FolderExportResult{
		Folder:  export.Folder.Path,
		Name:    export.Folder.Name,
		Videos:  len(export.Videos),
		Watched: export.Watched(),
		index:   j.index,
	}

	name := fmt.Sprintf("%02d_%s", j.index+1, formatter.DefaultFilename(export, opts.Format))
	path, err := formatter.WriteExport(export, opts.Format, filepath.Join(opts.OutputDir, name))
	if err != nil {
		res.Error = err
		return res
	}

	res.File = path
	res.Success = true
	return res
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
