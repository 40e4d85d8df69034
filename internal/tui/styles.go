package tui

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

type styles struct {
	sidebar      lipgloss.Style
	item         lipgloss.Style
	activeItem   lipgloss.Style
	cursorItem   lipgloss.Style
	placeholder  lipgloss.Style
	header       lipgloss.Style
	userLabel    lipgloss.Style
	botLabel     lipgloss.Style
	inlineCode   lipgloss.Style
	codeBlock    lipgloss.Style
	typing       lipgloss.Style
	input        lipgloss.Style
	inputBlocked lipgloss.Style
	help         lipgloss.Style
	modal        lipgloss.Style
	welcome      lipgloss.Style
}

func defaultStyles() styles {
	subtle := lipgloss.Color("245")
	accent := lipgloss.Color("39")
	return styles{
		sidebar:      lipgloss.NewStyle().Width(sidebarWidth).Padding(0, 1).Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(subtle),
		item:         lipgloss.NewStyle(),
		activeItem:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		cursorItem:   lipgloss.NewStyle().Reverse(true),
		placeholder:  lipgloss.NewStyle().Italic(true).Foreground(subtle),
		header:       lipgloss.NewStyle().Bold(true).Padding(0, 1),
		userLabel:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		botLabel:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		inlineCode:   lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		codeBlock:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(subtle).Padding(0, 1),
		typing:       lipgloss.NewStyle().Italic(true).Foreground(subtle),
		input:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		inputBlocked: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(subtle),
		help:         lipgloss.NewStyle().Foreground(subtle),
		modal:        lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 2),
		welcome:      lipgloss.NewStyle().Bold(true).Padding(1, 0),
	}
}

// highlightCode colours a code block for the terminal. The fence language is
// not kept, so the lexer is guessed from the code.
func highlightCode(code string) string {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, "", "terminal256", "monokai"); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
