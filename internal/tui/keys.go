package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit         key.Binding
	Submit       key.Binding
	Backspace    key.Binding
	Clear        key.Binding
	Ans          key.Binding
	Timer        key.Binding
	PauseResume  key.Binding
	ResetTimer   key.Binding
	Dismiss      key.Binding
	ClearHistory key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Submit:       key.NewBinding(key.WithKeys("enter", "="), key.WithHelp("enter", "=")),
		Backspace:    key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		Clear:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "AC")),
		Ans:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Ans")),
		Timer:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timer")),
		PauseResume:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		ResetTimer:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Dismiss:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
		ClearHistory: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear history")),
		Confirm:      key.NewBinding(key.WithKeys("y", "enter")),
		Cancel:       key.NewBinding(key.WithKeys("n", "esc")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Submit, k.Clear, k.Ans, k.Timer, k.PauseResume, k.ResetTimer, k.Dismiss, k.ClearHistory, k.Quit}
}

// calcRunes are passed to the session as keypad presses.
const calcRunes = "0123456789+-*/%^().,x×÷−"
