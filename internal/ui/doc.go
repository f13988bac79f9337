// Package ui implements an interactive terminal player using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow:
//  1. [LibraryView] : Browse the loaded track list and pick where to start
//  2. [NowPlayingView] : Watch playback progress and control the queue
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Playback state flows through the controller's subscription channel, re-armed
// after every delivery so position updates render without polling.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, n/p, l, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
