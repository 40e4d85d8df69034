package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/RichardoC/padchat/internal/chat"
	"github.com/RichardoC/padchat/internal/markup"
	"github.com/RichardoC/padchat/internal/models"
)

// View lays out the sidebar and the chat pane. Modals replace the whole
// screen, and below the breakpoint the open sidebar does too.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch {
	case m.confirm != nil:
		return m.modal(m.confirm.prompt + "\n\n[y] yes   [n] no")
	case m.alert != "":
		return m.modal(m.alert + "\n\npress any key")
	case m.narrow() && m.sidebarOpen:
		return m.sidebarView(m.height)
	case m.narrow():
		return m.mainView()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(m.height), m.mainView())
}

func (m Model) modal(text string) string {
	box := m.styles.modal.Width(min(60, m.width-4)).Render(text)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) sidebarView(height int) string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("Conversations"))
	b.WriteByte('\n')
	if len(m.items) == 0 {
		b.WriteString(m.styles.placeholder.Render(chat.NoConversationsText))
	}
	for i, item := range m.items {
		title := truncate(item.Title, sidebarWidth-4)
		style := m.styles.item
		if item.Active {
			style = m.styles.activeItem
			title = "● " + title
		} else {
			title = "  " + title
		}
		if m.focus == focusSidebar && i == m.cursor {
			style = style.Inherit(m.styles.cursorItem)
		}
		b.WriteString(style.Render(title))
		b.WriteByte('\n')
	}
	return m.styles.sidebar.Height(max(height, 1)).Render(b.String())
}

func (m Model) mainView() string {
	header := m.styles.header.Render(m.currentTitle())
	if m.narrow() {
		header += m.styles.help.Render("  (tab: conversations)")
	}

	inputStyle := m.styles.input
	if !m.sendEnabled {
		inputStyle = m.styles.inputBlocked
	}
	input := inputStyle.Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		input,
		m.helpLine(),
	)
}

func (m Model) helpLine() string {
	if m.status != "" {
		return m.styles.help.Render(m.status)
	}
	var parts []string
	for _, b := range m.keys.inputHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.help.Render(strings.Join(parts, " • "))
}

// transcript renders the message pane: the welcome screen, or the messages
// followed by the typing placeholder.
func (m Model) transcript(width int) string {
	if width <= 0 {
		width = 80
	}
	if m.welcome && len(m.messages) == 0 {
		return m.welcomeView()
	}

	var b strings.Builder
	for _, msg := range m.messages {
		b.WriteString(m.messageView(msg, width))
		b.WriteString("\n\n")
	}
	if m.typing {
		b.WriteString(m.styles.botLabel.Render("Assistant"))
		b.WriteByte('\n')
		b.WriteString(m.styles.typing.Render(chat.TypingText + "..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) welcomeView() string {
	var b strings.Builder
	b.WriteString(m.styles.welcome.Render(chat.WelcomeTitle))
	b.WriteByte('\n')
	for i, p := range examplePrompts {
		fmt.Fprintf(&b, "  %s %s\n", m.styles.help.Render(fmt.Sprintf("alt+%d", i+1)), p)
	}
	return b.String()
}

func (m Model) messageView(msg chat.MessageView, width int) string {
	label := m.styles.botLabel.Render("Assistant")
	if msg.Role == models.RoleUser {
		label = m.styles.userLabel.Render("You")
	}
	return label + "\n" + m.renderSegments(msg.Segments, width)
}

func (m Model) renderSegments(segs []markup.Segment, width int) string {
	var b strings.Builder
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			b.WriteString(lipgloss.NewStyle().Width(width).Render(text.String()))
			text.Reset()
		}
	}
	for _, seg := range segs {
		switch seg.Kind {
		case markup.Text:
			text.WriteString(seg.Text)
		case markup.InlineCode:
			text.WriteString(m.styles.inlineCode.Render(seg.Text))
		case markup.LineBreak:
			text.WriteByte('\n')
		case markup.CodeBlock:
			flush()
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
			b.WriteString(m.styles.codeBlock.Render(highlightCode(seg.Text)))
			b.WriteByte('\n')
		}
	}
	flush()
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
