package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/watchmark/internal/player"
	"github.com/desertthunder/watchmark/internal/services"
	"github.com/desertthunder/watchmark/internal/shared"
	"github.com/desertthunder/watchmark/internal/ui"
	"github.com/urfave/cli/v3"
)

const mpvStartTimeout = 5 * time.Second

// TUI launches mpv and the interactive terminal player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	client := r.config.Client
	if _, err := player.CheckMpv(client.MpvPath); err != nil {
		return err
	}

	if err := r.api.Health(ctx); err != nil {
		return fmt.Errorf("%w (is 'watchmark serve' running at %s?)", err, r.api.BaseURL())
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(client.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	startCtx, cancel := context.WithTimeout(ctx, mpvStartTimeout)
	proc, mpv, err := player.Start(startCtx, player.LaunchOpts{Binary: client.MpvPath, Socket: client.MpvSocket})
	cancel()
	if err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}
	defer func() {
		quitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := mpv.Quit(quitCtx); err != nil {
			r.logger.Debug("mpv quit command failed", "error", err)
		}
		mpv.Close()
		if err := proc.Stop(2 * time.Second); err != nil {
			r.logger.Warn("failed to stop mpv", "error", err)
		}
	}()

	r.logger.Info("mpv started", "socket", proc.Socket())

	return ui.Run(ctx, ui.Opts{
		Store:   services.NewProgressClient(r.api, r.logger),
		Folders: services.NewFolderClient(r.api, r.logger),
		Player:  mpv,
		Locate:  r.api.VideoURL,
		Logger:  r.logger,
	})
}
