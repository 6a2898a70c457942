package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/watchmark/internal/render"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF5F87", "#FFA500", "#626262")

// barWidth is the number of cells in a progress bar.
const barWidth = 12

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	active   lipgloss.Style
	muted    lipgloss.Style
	fill     lipgloss.Style
	done     lipgloss.Style
	pane     lipgloss.Style
	focused  lipgloss.Style
	dialog   lipgloss.Style
	selected lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		active:   NewBold(t),
		muted:    NewStyle(h),
		fill:     NewStyle(t),
		done:     NewStyle(s),
		pane:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
		focused:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
		dialog:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color(w)).Padding(1, 2),
		selected: NewBold(s),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// bar draws the progress bar and label of a video row.
func bar(row render.VideoRow) string {
	filled := max(0, min(barWidth, int(row.Fill*barWidth+0.5)))
	empty := styles.muted.Render(strings.Repeat("░", barWidth-filled))

	switch row.Status {
	case render.StatusDone:
		return styles.done.Render(strings.Repeat("█", filled)) + empty + " " + styles.done.Render(row.Label)
	case render.StatusNew:
		return empty + " " + styles.muted.Render(row.Label)
	default:
		return styles.fill.Render(strings.Repeat("█", filled)) + empty + " " + row.Label
	}
}
