package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Arrow keys drive playback: up and down move through the playlist, left and right seek.
// The cursor moves with j and k.
type keyMap struct {
	cursorUp   key.Binding
	cursorDown key.Binding
	enter      key.Binding
	tab        key.Binding
	back       key.Binding
	yes        key.Binding
	no         key.Binding

	pause    key.Binding
	forward  key.Binding
	rewind   key.Binding
	next     key.Binding
	previous key.Binding
	speed    key.Binding
	mute     key.Binding

	notes   key.Binding
	open    key.Binding
	choose  key.Binding
	refresh key.Binding
	clear   key.Binding
	remove  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		cursorUp:   key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "up")),
		cursorDown: key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		tab:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:         key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),

		pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		forward:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5s")),
		rewind:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5s")),
		next:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "next")),
		previous: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "previous")),
		speed:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "speed")),
		mute:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),

		notes:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notes")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open folder")),
		choose:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "use this folder")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear watched")),
		remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "forget folder")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.pause, k.next, k.previous, k.notes, k.open, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.cursorUp, k.cursorDown, k.enter, k.tab},
		{k.pause, k.rewind, k.forward, k.next, k.previous},
		{k.speed, k.mute, k.notes},
		{k.open, k.refresh, k.clear, k.remove, k.quit},
	}
}
