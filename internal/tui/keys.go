package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Increment key.Binding
	Undo      key.Binding
	Reset     key.Binding
	Next      key.Binding
	Prev      key.Binding
	Theme     key.Binding
	Sound     key.Binding
	Haptic    key.Binding
	Favorite  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Increment: key.NewBinding(key.WithKeys(" ", "enter", "k", "+"), key.WithHelp("space", "count")),
		Undo:      key.NewBinding(key.WithKeys("backspace", "-", "u"), key.WithHelp("u", "undo")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Next:      key.NewBinding(key.WithKeys("tab", "n"), key.WithHelp("n", "next dhikr")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "p"), key.WithHelp("p", "prev dhikr")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Sound:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sound")),
		Haptic:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "flash")),
		Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Undo, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Undo, k.Reset},
		{k.Next, k.Prev, k.Favorite},
		{k.Theme, k.Sound, k.Haptic},
		{k.Help, k.Quit},
	}
}
