package player

import (
	"context"
	"fmt"
)

// speeds are the playback rates cycled by [MPV.CycleSpeed].
var speeds = []string{"1", "1.25", "1.5", "2", "0.75"}

// MPV exposes the playback operations the session needs on top of a [Client].
type MPV struct {
	client *Client
}

// NewMPV wraps a connected client.
func NewMPV(client *Client) *MPV {
	return &MPV{client: client}
}

// Events returns the client's notifications.
func (m *MPV) Events() <-chan Event {
	return m.client.Events()
}

// Load replaces the current file with source. Playback starts paused so the caller decides when to play.
//
// It returns the playlist entry mpv assigned to source, or 0 when mpv does not report one.
func (m *MPV) Load(ctx context.Context, source string) (int64, error) {
	if err := m.client.SetProperty(ctx, "pause", true); err != nil {
		return 0, err
	}
	data, err := m.client.Command(ctx, "loadfile", source, "replace")
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", source, err)
	}

	reply, ok := data.(map[string]any)
	if !ok {
		return 0, nil
	}
	id, err := toFloat64(reply["playlist_entry_id"])
	if err != nil {
		return 0, nil
	}
	return int64(id), nil
}

// Play resumes playback.
func (m *MPV) Play(ctx context.Context) error {
	return m.client.SetProperty(ctx, "pause", false)
}

// Pause pauses playback.
func (m *MPV) Pause(ctx context.Context) error {
	return m.client.SetProperty(ctx, "pause", true)
}

// TogglePause flips between playing and paused.
func (m *MPV) TogglePause(ctx context.Context) error {
	_, err := m.client.Command(ctx, "cycle", "pause")
	return err
}

// Paused reports whether playback is paused.
func (m *MPV) Paused(ctx context.Context) (bool, error) {
	result, err := m.client.GetProperty(ctx, "pause")
	if err != nil {
		return false, err
	}
	paused, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected pause value type: %T", result)
	}
	return paused, nil
}

// Seek jumps to an absolute position in seconds.
func (m *MPV) Seek(ctx context.Context, seconds float64) error {
	_, err := m.client.Command(ctx, "seek", seconds, "absolute")
	return err
}

// SeekBy moves the position by delta seconds.
func (m *MPV) SeekBy(ctx context.Context, delta float64) error {
	_, err := m.client.Command(ctx, "seek", delta, "relative")
	return err
}

// Position returns the playback position in seconds.
func (m *MPV) Position(ctx context.Context) (float64, error) {
	return m.client.GetFloat(ctx, "time-pos")
}

// Duration returns the length of the current file in seconds.
func (m *MPV) Duration(ctx context.Context) (float64, error) {
	return m.client.GetFloat(ctx, "duration")
}

// Stop unloads the current file, leaving mpv idle.
func (m *MPV) Stop(ctx context.Context) error {
	_, err := m.client.Command(ctx, "stop")
	return err
}

// CycleSpeed steps through the preset playback rates.
func (m *MPV) CycleSpeed(ctx context.Context) error {
	args := make([]any, 0, len(speeds)+1)
	args = append(args, "speed")
	for _, s := range speeds {
		args = append(args, s)
	}
	_, err := m.client.Command(ctx, "cycle-values", args...)
	return err
}

// ToggleMute flips audio mute.
func (m *MPV) ToggleMute(ctx context.Context) error {
	_, err := m.client.Command(ctx, "cycle", "mute")
	return err
}

// Quit asks mpv to exit.
func (m *MPV) Quit(ctx context.Context) error {
	_, err := m.client.Command(ctx, "quit")
	return err
}

// Close disconnects from mpv without stopping it.
func (m *MPV) Close() error {
	return m.client.Close()
}
