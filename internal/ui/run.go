package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchmark/internal/player"
	"github.com/desertthunder/watchmark/internal/session"
)

// Player is the media player driven by the TUI. Implemented by [player.MPV].
type Player interface {
	session.Player
	Events() <-chan player.Event
}

// Opts contains the collaborators of the TUI.
type Opts struct {
	Store   session.ProgressStore
	Folders session.FolderBrowser
	Player  Player
	Locate  session.Locator
	Logger  *log.Logger
}

// Run starts the terminal player and blocks until the user quits, mpv exits or ctx is cancelled.
func Run(ctx context.Context, opts Opts) error {
	var program *tea.Program
	sched := session.NewLoopScheduler(func(fn func()) { program.Send(callbackMsg(fn)) })

	ctl := session.New(session.Opts{
		Store:    opts.Store,
		Folders:  opts.Folders,
		Player:   opts.Player,
		Schedule: sched,
		Locate:   opts.Locate,
		Logger:   opts.Logger,
		Context:  context.WithoutCancel(ctx),
	})

	model := NewModel(ctl)
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		for ev := range opts.Player.Events() {
			program.Send(playerEventMsg(ev))
		}
	}()

	_, err := program.Run()
	model.Close()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
