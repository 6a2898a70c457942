package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// MpvInstallURL is shown when mpv cannot be found.
const MpvInstallURL = "https://mpv.io/installation/"

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// CheckMpv checks that the mpv binary (a name on PATH or a path) is available.
func CheckMpv(bin string) (string, error) {
	if bin == "" {
		bin = "mpv"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", &DependencyError{Name: bin, InstallURL: MpvInstallURL}
	}
	return path, nil
}

// LaunchOpts configures [Launch].
type LaunchOpts struct {
	Binary string   // mpv executable, defaults to "mpv"
	Socket string   // IPC socket path, defaults to [DefaultSocketPath]
	Args   []string // extra mpv arguments
}

// Process is a running mpv instance.
type Process struct {
	cmd    *exec.Cmd
	socket string
	exited chan error
}

// Launch starts mpv idle with a window and the IPC socket enabled.
// It checks that mpv is installed first and returns a [*DependencyError] if not.
func Launch(opts LaunchOpts) (*Process, error) {
	bin, err := CheckMpv(opts.Binary)
	if err != nil {
		return nil, err
	}
	if opts.Socket == "" {
		opts.Socket = DefaultSocketPath
	}

	if err := os.Remove(opts.Socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	args := append([]string{
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=no",
		"--input-ipc-server=" + opts.Socket,
	}, opts.Args...)

	cmd := exec.Command(bin, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	p := &Process{cmd: cmd, socket: opts.Socket, exited: make(chan error, 1)}
	go func() { p.exited <- cmd.Wait() }()
	return p, nil
}

// Socket returns the IPC socket path of the process.
func (p *Process) Socket() string {
	return p.socket
}

// Stop terminates mpv if it is still running and removes its socket.
func (p *Process) Stop(timeout time.Duration) error {
	defer os.Remove(p.socket)

	select {
	case <-p.exited:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		return p.cmd.Process.Kill()
	}

	select {
	case <-p.exited:
		return nil
	case <-time.After(timeout):
		return p.cmd.Process.Kill()
	}
}

// Start launches mpv and connects a client to it, waiting up to ctx for the socket to appear.
func Start(ctx context.Context, opts LaunchOpts) (*Process, *MPV, error) {
	proc, err := Launch(opts)
	if err != nil {
		return nil, nil, err
	}

	client := NewClient(proc.Socket())
	if err := client.Connect(ctx); err != nil {
		_ = proc.Stop(time.Second)
		return nil, nil, err
	}
	return proc, NewMPV(client), nil
}
