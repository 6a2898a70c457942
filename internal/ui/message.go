package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchmark/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCallback MsgKind = iota
	MsgPlayerEvent
)

// callbackMsg is the constructor for [MsgCallback]: a timer callback to run on the event loop.
func callbackMsg(fn func()) Msg {
	return Msg{kind: MsgCallback, data: fn}
}

// playerEventMsg is the constructor for [MsgPlayerEvent]
func playerEventMsg(ev player.Event) Msg {
	return Msg{kind: MsgPlayerEvent, data: ev}
}
