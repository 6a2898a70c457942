package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/watchmark/internal/models"
)

var _ list.Item = browseItem{}

// browseItem wraps [models.BrowseItem] to implement [list.Item].
type browseItem struct {
	item models.BrowseItem
}

func (i browseItem) FilterValue() string { return i.item.Name }
func (i browseItem) Title() string {
	if i.item.IsParent {
		return "↑ .."
	}
	return "▸ " + i.item.Name
}
func (i browseItem) Description() string {
	if i.item.IsParent {
		return "parent directory"
	}
	return i.item.Path
}

func browseItems(listing models.Listing) []list.Item {
	items := make([]list.Item, len(listing.Items))
	for i, it := range listing.Items {
		items[i] = browseItem{item: it}
	}
	return items
}

// newBrowser creates the directory picker. Filtering and the built-in quit key are
// disabled so the model owns esc and q.
func newBrowser(width, height int) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}
