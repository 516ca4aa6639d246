package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the simulator.
type KeyMap struct {
	// Selection
	Up   key.Binding
	Down key.Binding

	// Popups
	ShowInfo    key.Binding
	ShowWarning key.Binding
	ShowError   key.Binding
	ShowConfirm key.Binding
	Click       key.Binding
	Close       key.Binding
	CloseAll    key.Binding
	Shake       key.Binding

	// Options for new popups
	NextPosition   key.Binding
	PrevPosition   key.Binding
	NextScreen     key.Binding
	ToggleDark     key.Binding
	ToggleAttach   key.Binding
	ToggleAutoHide key.Binding

	// Window
	WindowLeft    key.Binding
	WindowRight   key.Binding
	WindowUp      key.Binding
	WindowDown    key.Binding
	WindowIconify key.Binding
	RotateScreen  key.Binding

	// Export
	CopyJSON key.Binding
	CopyYAML key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ShowInfo, k.Close, k.NextPosition, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ShowInfo, k.ShowWarning, k.ShowError, k.ShowConfirm},
		{k.Up, k.Down, k.Click, k.Close, k.CloseAll, k.Shake},
		{k.NextPosition, k.PrevPosition, k.NextScreen, k.ToggleDark, k.ToggleAttach, k.ToggleAutoHide},
		{k.WindowLeft, k.WindowRight, k.WindowUp, k.WindowDown, k.WindowIconify, k.RotateScreen},
		{k.CopyJSON, k.CopyYAML, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "select up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "select down"),
		),
		ShowInfo: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new information"),
		),
		ShowWarning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "new warning"),
		),
		ShowError: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "new error"),
		),
		ShowConfirm: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "new confirm"),
		),
		Click: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "click popup"),
		),
		Close: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close popup"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "close all"),
		),
		Shake: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "shake popup"),
		),
		NextPosition: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next position"),
		),
		PrevPosition: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "previous position"),
		),
		NextScreen: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "next screen"),
		),
		ToggleDark: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle dark"),
		),
		ToggleAttach: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle attach"),
		),
		ToggleAutoHide: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle auto-hide"),
		),
		WindowLeft: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("shift+←/H", "window left"),
		),
		WindowRight: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("shift+→/L", "window right"),
		),
		WindowUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("shift+↑/K", "window up"),
		),
		WindowDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("shift+↓/J", "window down"),
		),
		WindowIconify: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "minimize window"),
		),
		RotateScreen: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rotate window's screen"),
		),
		CopyJSON: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy layout as JSON"),
		),
		CopyYAML: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy layout as YAML"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
