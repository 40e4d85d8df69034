package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send          key.Binding
	Newline       key.Binding
	NewChat       key.Binding
	ToggleSidebar key.Binding
	SwitchFocus   key.Binding
	Dismiss       key.Binding
	Refresh       key.Binding
	CopyReply     key.Binding
	Quit          key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	Examples      key.Binding

	// Sidebar focus only.
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Delete key.Binding

	// Modals.
	Yes key.Binding
	No  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:       key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		NewChat:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		ToggleSidebar: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "sidebar")),
		SwitchFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "conversations")),
		Dismiss:       key.NewBinding(key.WithKeys("esc")),
		Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		CopyReply:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
		Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		ScrollUp:      key.NewBinding(key.WithKeys("pgup")),
		ScrollDown:    key.NewBinding(key.WithKeys("pgdown")),
		Examples:      key.NewBinding(key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4")),

		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Select: key.NewBinding(key.WithKeys("enter")),
		Delete: key.NewBinding(key.WithKeys("d", "delete")),

		Yes: key.NewBinding(key.WithKeys("y", "Y")),
		No:  key.NewBinding(key.WithKeys("n", "N", "esc")),
	}
}

func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Send, k.Newline, k.NewChat, k.SwitchFocus, k.ToggleSidebar, k.CopyReply, k.Quit}
}
