// Package ui implements the interactive terminal player using bubbletea's Elm architecture.
//
// The TUI has one main screen and three overlays:
//  1. [LibraryView] : folder history on the left, the playlist with progress bars on the right,
//     the playing video and its notes below
//  2. [BrowseView] : directory picker for choosing a new folder
//  3. [ConfirmView] : y/n prompt before clearing watched videos or forgetting a folder
//  4. [AlertView] : blocking error message, used when a folder cannot be selected
//
// The (view) [Model] owns a [session.Controller] and is its only caller. Timer callbacks and
// mpv events arrive as messages through the Msg union, so every state change happens on the
// bubbletea event loop.
//
// Arrow keys control playback (↑ next, ↓ previous, ←/→ seek), j/k move the cursor, and all
// shortcuts are ignored while the notes editor has focus.
package ui
