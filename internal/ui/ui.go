package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/watchmark/internal/formatter"
	"github.com/desertthunder/watchmark/internal/player"
	"github.com/desertthunder/watchmark/internal/render"
	"github.com/desertthunder/watchmark/internal/services"
	"github.com/desertthunder/watchmark/internal/session"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LibraryView ViewState = iota
	BrowseView
	ConfirmView
	AlertView
)

// Pane is the focused half of the library view.
type Pane int

const (
	VideosPane Pane = iota
	FoldersPane
)

const historyWidth = 30

type confirmation struct {
	prompt string
	action func()
}

// Model represents the TUI application state.
type Model struct {
	ctl     *session.Controller
	view    ViewState
	prev    ViewState
	focus   Pane
	width   int
	height  int
	cursor  int
	folder  int
	playing string
	paused  bool
	status  string
	alert   string
	confirm *confirmation
	editing bool
	notes   textarea.Model
	browser list.Model
	listing string
	closed  bool
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model driving ctl.
func NewModel(ctl *session.Controller) *Model {
	notes := textarea.New()
	notes.Placeholder = "Notes for this video..."
	notes.ShowLineNumbers = false
	notes.SetHeight(3)

	return &Model{
		ctl:     ctl,
		view:    LibraryView,
		notes:   notes,
		browser: newBrowser(0, 0),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init restores the last folder and the folder history.
func (m *Model) Init() tea.Cmd {
	m.ctl.Init()
	return nil
}

// Close ends the playback session once. It is safe to call after the program exits.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.ctl.Close()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.browser.SetSize(msg.Width-4, msg.Height-6)
		m.notes.SetWidth(max(20, msg.Width-historyWidth-8))
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch m.view {
		case LibraryView:
			if m.editing {
				return m.handleNotesKeys(msg)
			}
			return m.handleLibraryKeys(msg)
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case AlertView:
			return m.handleAlertKeys(msg)
		}
	}

	var cmd tea.Cmd
	if m.editing {
		m.notes, cmd = m.notes.Update(msg)
	} else if m.view == BrowseView {
		m.browser, cmd = m.browser.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.closed {
		return ""
	}

	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case ConfirmView:
		return m.renderDialog(styles.warn.Render(m.confirm.prompt), m.keys.yes, m.keys.no)
	case AlertView:
		return m.renderDialog(styles.err.Render(m.alert), m.keys.back)
	default:
		return m.renderLibrary()
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCallback:
		if fn, ok := msg.data.(func()); ok {
			fn()
		}
	case MsgPlayerEvent:
		ev, _ := msg.data.(player.Event)
		switch ev.Kind {
		case player.EventMetadataLoaded:
			m.ctl.OnMetadataLoaded(ev.Entry)
		case player.EventEnded:
			m.ctl.OnEnded()
		case player.EventPaused:
			m.paused = true
		case player.EventResumed:
			m.paused = false
		case player.EventShutdown:
			return m.quit()
		}
	}

	m.sync()
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.tab):
		if m.focus == VideosPane {
			m.focus = FoldersPane
		} else {
			m.focus = VideosPane
		}
	case key.Matches(msg, m.keys.cursorUp):
		m.move(-1)
	case key.Matches(msg, m.keys.cursorDown):
		m.move(1)
	case key.Matches(msg, m.keys.enter):
		m.activate()
	case key.Matches(msg, m.keys.pause):
		m.ctl.TogglePause()
	case key.Matches(msg, m.keys.forward):
		m.ctl.SeekBy(session.SeekStep)
	case key.Matches(msg, m.keys.rewind):
		m.ctl.SeekBy(-session.SeekStep)
	case key.Matches(msg, m.keys.next):
		m.ctl.Next()
	case key.Matches(msg, m.keys.previous):
		m.ctl.Previous()
	case key.Matches(msg, m.keys.speed):
		m.ctl.CycleSpeed()
	case key.Matches(msg, m.keys.mute):
		m.ctl.ToggleMute()
	case key.Matches(msg, m.keys.notes):
		return m, m.startEditing()
	case key.Matches(msg, m.keys.open):
		m.openBrowser(m.ctl.State().Folder.Path)
	case key.Matches(msg, m.keys.refresh):
		if err := m.ctl.Refresh(); err != nil {
			m.showAlert(err)
		}
	case key.Matches(msg, m.keys.clear):
		m.ask("Clear progress of every watched video?", func() {
			n, err := m.ctl.ClearCompleted()
			if err != nil {
				m.showAlert(err)
				return
			}
			m.status = fmt.Sprintf("cleared %d watched videos", n)
		})
	case key.Matches(msg, m.keys.remove):
		history := m.ctl.State().History
		if m.focus != FoldersPane || m.folder >= len(history) {
			break
		}
		f := history[m.folder]
		m.ask(fmt.Sprintf("Forget %s?", f.Path), func() {
			if err := m.ctl.RemoveFromHistory(f.Path); err != nil {
				m.showAlert(err)
			}
		})
	}

	m.sync()
	return m, nil
}

func (m *Model) handleNotesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		m.stopEditing()
		return m, nil
	}

	before := m.notes.Value()
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	if after := m.notes.Value(); after != before {
		m.ctl.EditRemark(after)
	}
	return m, cmd
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = LibraryView
		return m, nil
	case key.Matches(msg, m.keys.choose):
		m.selectFolder(m.listing)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.browser.SelectedItem().(browseItem); ok {
			m.openBrowser(it.item.Path)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		action := m.confirm.action
		m.confirm = nil
		m.view = m.prev
		action()
	case key.Matches(msg, m.keys.no), msg.String() == "q":
		m.confirm = nil
		m.view = m.prev
	case msg.String() == "ctrl+c":
		return m.quit()
	}

	m.sync()
	return m, nil
}

func (m *Model) handleAlertKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "enter", "esc", "q", " ":
		m.alert = ""
		m.view = m.prev
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

// activate plays the video under the cursor or selects the folder under it.
func (m *Model) activate() {
	state := m.ctl.State()
	switch m.focus {
	case VideosPane:
		if m.cursor < len(state.Playlist) {
			m.ctl.LoadVideo(m.cursor)
			m.paused = false
		}
	case FoldersPane:
		if m.folder < len(state.History) {
			m.selectFolder(state.History[m.folder].Path)
		}
	}
}

func (m *Model) move(delta int) {
	state := m.ctl.State()
	if m.focus == FoldersPane {
		m.folder = clamp(m.folder+delta, len(state.History))
		return
	}
	m.cursor = clamp(m.cursor+delta, len(state.Playlist))
}

// sync follows the active video with the cursor and leaves the notes editor when
// the active video changes underneath it.
func (m *Model) sync() {
	state := m.ctl.State()
	if state.Path != m.playing {
		m.playing = state.Path
		if m.editing {
			m.stopEditing()
		}
		if state.Index >= 0 {
			m.cursor = state.Index
		}
	}
	m.cursor = clamp(m.cursor, len(state.Playlist))
	m.folder = clamp(m.folder, len(state.History))
}

func (m *Model) startEditing() tea.Cmd {
	video, ok := m.ctl.State().Current()
	if !ok {
		m.status = "play a video to add notes"
		return nil
	}
	m.editing = true
	m.notes.SetValue(video.RemarkText())
	return m.notes.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.notes.Blur()
}

func (m *Model) openBrowser(path string) {
	listing, err := m.ctl.Browse(path)
	if err != nil {
		m.showAlert(err)
		return
	}

	m.listing = listing.CurrentPath
	m.browser.Title = listing.CurrentPath
	m.browser.SetItems(browseItems(listing))
	m.browser.ResetSelected()
	m.view = BrowseView
}

func (m *Model) selectFolder(path string) {
	if err := m.ctl.SelectFolder(path); err != nil {
		m.showAlert(err)
		return
	}

	m.view = LibraryView
	m.focus = VideosPane
	m.cursor = 0
	m.folder = 0
	m.status = ""
	m.sync()
}

func (m *Model) ask(prompt string, action func()) {
	m.prev = m.view
	m.confirm = &confirmation{prompt: prompt, action: action}
	m.view = ConfirmView
}

// showAlert blocks the UI with a message until dismissed.
func (m *Model) showAlert(err error) {
	if m.view != AlertView {
		m.prev = m.view
	}
	m.alert = alertText(err)
	m.view = AlertView
}

// alertText prefers the server's message over the wrapped error chain.
func alertText(err error) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func (m *Model) renderLibrary() string {
	state := m.ctl.State()
	view := render.Build(state.Playlist, state.Index, state.History, state.Folder.Path)

	folder := state.Folder.Name
	if folder == "" {
		folder = "no folder selected"
	}
	header := styles.title.Render("watchmark · "+folder) + "\n" + styles.muted.Render(view.Summary())

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderHistory(view), m.renderVideos(view))

	parts := []string{header, body, m.renderNowPlaying(state)}
	if m.status != "" {
		parts = append(parts, styles.help.Render(m.status))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *Model) renderHistory(view render.View) string {
	var b strings.Builder
	b.WriteString(styles.active.Render("Folders") + "\n")

	if len(view.Folders) == 0 {
		b.WriteString(styles.muted.Render("o to open a folder"))
	}
	for i, f := range view.Folders {
		line := truncate(f.Name, historyWidth-4)
		if f.Selected {
			line = styles.selected.Render(line)
		}
		b.WriteString(m.marker(FoldersPane, i == m.folder) + line + "\n")
	}

	style := styles.pane
	if m.focus == FoldersPane {
		style = styles.focused
	}
	return style.Width(historyWidth).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderVideos(view render.View) string {
	width := max(40, m.width-historyWidth-6)
	nameWidth := max(10, width-barWidth-14)

	var b strings.Builder
	b.WriteString(styles.active.Render("Videos") + "\n")
	if len(view.Videos) == 0 {
		b.WriteString(styles.muted.Render("no videos in this folder"))
	}

	start, end := window(m.cursor, len(view.Videos), m.listHeight())
	for i := start; i < end; i++ {
		row := view.Videos[i]

		name := truncate(row.Name, nameWidth)
		if row.Active {
			name = styles.active.Render("▶ " + name)
		} else {
			name = "  " + name
		}
		if row.Remarks {
			name += styles.muted.Render(" ✎")
		}

		pad := max(1, nameWidth+4-lipgloss.Width(name))
		b.WriteString(m.marker(VideosPane, i == m.cursor) + name + strings.Repeat(" ", pad) + bar(row) + "\n")
	}

	style := styles.pane
	if m.focus == VideosPane {
		style = styles.focused
	}
	return style.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderNowPlaying(state session.State) string {
	video, ok := state.Current()
	if !ok {
		return styles.muted.Render("nothing playing")
	}

	line := styles.ok.Render("▶ ") + video.DisplayName
	if m.paused {
		line = styles.warn.Render("⏸ ") + video.DisplayName
	}
	if at, ok := m.ctl.PendingResume(); ok {
		line += styles.muted.Render(" · resuming at " + formatter.FormatTime(at))
	}

	notes := styles.muted.Render("n to add notes")
	switch {
	case m.editing:
		notes = m.notes.View() + "\n" + styles.help.Render("esc to finish")
	case video.RemarkText() != "":
		notes = video.RemarkText()
	}
	return line + "\n" + notes
}

func (m *Model) renderBrowse() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.choose, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.browser.View(), helpView)
}

func (m *Model) renderDialog(body string, keys ...key.Binding) string {
	return styles.dialog.Render(body) + "\n\n" + m.help.ShortHelpView(keys)
}

func (m *Model) marker(pane Pane, cursor bool) string {
	if cursor && m.focus == pane {
		return styles.active.Render("> ")
	}
	return "  "
}

func (m *Model) listHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(3, m.height-14)
}

// window returns the visible slice bounds of n rows of which size fit, keeping cursor in view.
func window(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := max(0, min(cursor-size/2, n-size))
	return start, start + size
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	return min(i, n-1)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
