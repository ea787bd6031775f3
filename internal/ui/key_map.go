package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	enter      key.Binding
	back       key.Binding
	deactivate key.Binding
	preview    key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		deactivate: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deactivate")),
		preview:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.deactivate, k.preview},
		{k.quit},
	}
}
