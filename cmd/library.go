package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/watchmark/internal/formatter"
	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/player"
	"github.com/desertthunder/watchmark/internal/services"
	"github.com/desertthunder/watchmark/internal/shared"
	"github.com/desertthunder/watchmark/internal/tasks"
	"github.com/urfave/cli/v3"
)

// HistoryList prints the folder history, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	folders := services.NewFolderClient(r.api, r.logger).ListHistory(ctx)

	if cmd.Bool("json") {
		if folders == nil {
			folders = []models.Folder{}
		}
		return r.writeJSON(folders, true)
	}

	if len(folders) == 0 {
		return r.writePlain("No folders in history\n")
	}

	r.writePlainHeader("Folder history")
	for i, f := range folders {
		r.writePlain("%2d. %s\n    %s", i+1, f.Name, f.Path)
		if !f.LastAccessed.IsZero() {
			r.writePlain(" · opened %d times, last %s", f.AccessCount, f.LastAccessed.Local().Format("2006-01-02 15:04"))
		}
		r.writePlain("\n")
	}
	return nil
}

// HistoryRemove forgets a folder. The folder stays selected if it is the active one.
func (r *Runner) HistoryRemove(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: folder path is required", shared.ErrMissingArgument)
	}

	if err := services.NewFolderClient(r.api, r.logger).RemoveFromHistory(ctx, path); err != nil {
		return fmt.Errorf("failed to remove folder: %w", err)
	}
	return r.writePlain("✓ Removed %s from history\n", path)
}

// ClearCompleted forgets the progress of every watched video.
func (r *Runner) ClearCompleted(ctx context.Context, cmd *cli.Command) error {
	n, err := services.NewProgressClient(r.api, r.logger).ClearCompleted(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear completed videos: %w", err)
	}
	return r.writePlain("✓ Cleared progress of %d watched videos\n", n)
}

// Export writes the video list of a folder, with progress and notes, in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	folders := services.NewFolderClient(r.api, r.logger)
	if cmd.Bool("all") {
		return r.exportAll(ctx, cmd, folders, format)
	}

	var sel *models.Selection
	if folder := cmd.String("folder"); folder != "" {
		sel, err = folders.SelectFolder(ctx, folder)
	} else {
		sel, err = folders.LastFolder(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load folder: %w", err)
	}
	if sel == nil {
		return fmt.Errorf("%w: pass --folder or pick one in the player first", shared.ErrNoFolderSelected)
	}

	export := formatter.NewExport(sel)
	output := cmd.String("output")

	if output == "-" {
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("exported videos", "folder", sel.Folder, "count", len(sel.Videos), "path", path)
	return r.writePlain("✓ Exported %d videos (%d watched) to %s\n", len(export.Videos), export.Watched(), path)
}

// exportAll writes one file per history folder into the --output directory.
func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, folders *services.FolderClient, format formatter.Format) error {
	output := cmd.String("output")
	if output == "-" {
		return fmt.Errorf("%w: --all writes a directory, not stdout", shared.ErrInvalidArgument)
	}

	history := folders.ListHistory(ctx)
	if len(history) == 0 {
		return r.writePlain("No folders in history\n")
	}

	paths := make([]string, len(history))
	for i, f := range history {
		paths[i] = f.Path
	}

	progress := make(chan tasks.ProgressUpdate, len(paths)*2+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			if u.Phase == tasks.ExportFolder {
				r.writePlain("[%d/%d] %s\n", u.Step, u.Total, u.Message)
			}
		}
	}()

	result, err := tasks.NewExporter(folders, r.logger).BulkExport(ctx, progress, paths, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  output,
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.Server.RateLimit,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d folders to %s", result.SuccessfulExports, result.TotalFolders, result.OutputDirectory)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d %s failed, see %s", result.FailedExports, plural(result.FailedExports, "folder", "folders"), result.ManifestPath)
	}
	return nil
}

// Doctor checks the pieces the player depends on and reports each one.
func (r *Runner) Doctor(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("watchmark doctor")

	failed := 0
	check := func(name string, err error, ok string) {
		if err != nil {
			failed++
			r.writePlain("✗ %-8s %v\n", name, err)
			return
		}
		r.writePlain("✓ %-8s %s\n", name, ok)
	}

	check("config", r.config.Validate(), r.configPath)

	mpv, err := player.CheckMpv(r.config.Client.MpvPath)
	check("mpv", err, mpv)

	check("server", r.api.Health(ctx), r.api.BaseURL())

	if failed > 0 {
		return fmt.Errorf("%d %s failed", failed, plural(failed, "check", "checks"))
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
