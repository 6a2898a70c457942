// package player drives an mpv process over its JSON IPC socket
package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSocketPath is the default Unix socket path for mpv IPC.
const DefaultSocketPath = "/tmp/watchmark-mpv.sock"

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket cannot be dialed.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
)

// ipcRequest represents a JSON IPC request to mpv.
type ipcRequest struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

// ipcMessage is any line mpv writes: a reply (request_id set) or an event (event set).
type ipcMessage struct {
	Data      any    `json:"data"`
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
	Event     string `json:"event"`
	Reason    string `json:"reason"`

	PlaylistEntryID int64 `json:"playlist_entry_id"`
}

// EventKind identifies a player notification.
type EventKind int

const (
	// EventMetadataLoaded fires once a file is loaded and its duration is known.
	EventMetadataLoaded EventKind = iota + 1
	// EventEnded fires when playback of a file reached its natural end.
	EventEnded
	// EventPaused fires when playback pauses.
	EventPaused
	// EventResumed fires when playback resumes.
	EventResumed
	// EventShutdown fires when mpv exits or the socket closes. No events follow it.
	EventShutdown
)

func (k EventKind) String() string {
	switch k {
	case EventMetadataLoaded:
		return "metadata-loaded"
	case EventEnded:
		return "ended"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Event is a notification from the player.
type Event struct {
	Kind   EventKind
	Reason string
	// Entry is the mpv playlist entry the event belongs to, or 0 when mpv did not say.
	Entry int64
}

// Client is an mpv IPC client that communicates via Unix socket.
//
// A background reader routes replies to their callers by request ID and translates
// mpv events into [Event] values on [Client.Events].
type Client struct {
	socketPath string
	nextID     atomic.Uint64
	events     chan Event
	writeMu    sync.Mutex

	mu      sync.Mutex
	conn    net.Conn
	pending map[uint64]chan ipcMessage
	done    chan struct{}
	closed  bool
}

// NewClient creates a new mpv IPC client.
// If socketPath is empty, DefaultSocketPath is used.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{
		socketPath: socketPath,
		events:     make(chan Event, 64),
		pending:    make(map[uint64]chan ipcMessage),
	}
}

// SocketPath returns the socket path this client is configured to use.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Events returns the channel of player notifications. It is closed after [EventShutdown].
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect dials the mpv socket, retrying until it appears or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	if c.closed {
		return ErrNotConnected
	}

	var dialer net.Dialer
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
		if err == nil {
			c.conn = conn
			c.done = make(chan struct{})
			go c.readLoop(conn, c.done)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
		case <-ticker.C:
		}
	}
}

// Close closes the connection to mpv.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// IsConnected returns true if the client is connected to mpv.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// GetProperty retrieves the value of an mpv property (e.g. "time-pos", "duration", "pause").
func (c *Client) GetProperty(ctx context.Context, name string) (any, error) {
	return c.Command(ctx, "get_property", name)
}

// SetProperty sets the value of an mpv property (e.g. "pause", "speed").
func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// GetFloat retrieves a numeric property.
func (c *Client) GetFloat(ctx context.Context, name string) (float64, error) {
	result, err := c.GetProperty(ctx, name)
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// Command sends a JSON IPC command to mpv and waits for its reply.
//
// The command is formatted as {"command": [command, args...], "request_id": <id>}
// and sent as newline-terminated JSON over the socket.
func (c *Client) Command(ctx context.Context, command string, args ...any) (any, error) {
	id := c.nextID.Add(1)
	reply := make(chan ipcMessage, 1)

	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn, done := c.conn, c.done
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	data, err := json.Marshal(ipcRequest{Command: append([]any{command}, args...), RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}

	c.writeMu.Lock()
	_, err = conn.Write(append(data, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv: %s: %s", command, msg.Error)
		}
		return msg.Data, nil
	case <-done:
		return nil, ErrNotConnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	reader := bufio.NewReader(conn)
	var entry int64
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			break
		}

		var msg ipcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}

		if msg.Event != "" {
			if msg.Event == "start-file" {
				entry = msg.PlaylistEntryID
			}
			if ev, ok := translate(msg, entry); ok {
				c.events <- ev
			}
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		c.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	c.mu.Lock()
	c.conn = nil
	c.closed = true
	close(done)
	c.mu.Unlock()
	conn.Close()

	c.events <- Event{Kind: EventShutdown}
	close(c.events)
}

// translate maps the mpv events the player cares about; the rest are dropped.
// entry is the playlist entry of the most recent start-file.
func translate(msg ipcMessage, entry int64) (Event, bool) {
	switch msg.Event {
	case "file-loaded":
		return Event{Kind: EventMetadataLoaded, Entry: entry}, true
	case "end-file":
		if msg.Reason == "eof" {
			return Event{Kind: EventEnded, Reason: msg.Reason}, true
		}
	case "pause":
		return Event{Kind: EventPaused}, true
	case "unpause":
		return Event{Kind: EventResumed}, true
	}
	return Event{}, false
}

// toFloat64 converts a decoded JSON number to float64.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}
