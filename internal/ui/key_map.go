package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the player TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	toggle   key.Binding
	next     key.Binding
	prev     key.Binding
	seekBack key.Binding
	seekFwd  key.Binding
	like     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		seekBack: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek -5s")),
		seekFwd:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek +5s")),
		like:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.next, k.prev, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.toggle, k.next, k.prev},
		{k.seekBack, k.seekFwd, k.like},
		{k.back, k.quit},
	}
}
