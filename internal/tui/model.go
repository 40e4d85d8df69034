// Package tui is the terminal front end of the chat client.
package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RichardoC/padchat/internal/chat"
	"github.com/RichardoC/padchat/internal/models"
)

const (
	DefaultBreakpoint     = 100
	DefaultMaxInputHeight = 6
)

var examplePrompts = []string{
	"Explain how goroutines differ from threads",
	"Write a haiku about terminals",
	"Summarize the last article I pasted",
	"Help me debug a failing test",
}

type Options struct {
	// Breakpoint in columns; at or below it the sidebar becomes a drawer.
	Breakpoint     int
	MaxInputHeight int
}

func (o Options) withDefaults() Options {
	if o.Breakpoint <= 0 {
		o.Breakpoint = DefaultBreakpoint
	}
	if o.MaxInputHeight <= 0 {
		o.MaxInputHeight = DefaultMaxInputHeight
	}
	return o
}

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type Model struct {
	ctx    context.Context
	ctrl   *chat.Controller
	opts   Options
	keys   keyMap
	styles styles

	width  int
	height int

	items       []chat.ConversationItem
	cursor      int
	messages    []chat.MessageView
	typing      bool
	welcome     bool
	sidebarOpen bool
	sendEnabled bool
	focus       focusArea

	alert   string
	confirm *confirmMsg
	status  string

	input    textarea.Model
	viewport viewport.Model
}

func NewModel(ctx context.Context, ctrl *chat.Controller, opts Options) Model {
	opts = opts.withDefaults()

	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline = defaultKeyMap().Newline
	ta.Focus()

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		opts:     opts,
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
		welcome:  true,
		input:    ta,
		viewport: viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.run("start", m.ctrl.Start))
}

// run executes a controller operation off the event loop.
func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ctrl.Resize(msg.Width)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case conversationsMsg:
		m.items = msg
		m.cursor = m.activeIndex()
		return m, nil

	case messagesMsg:
		m.messages = msg
		m.typing = false
		m.refreshViewport()
		return m, nil

	case appendMsg:
		m.messages = append(m.messages, chat.MessageView(msg))
		m.refreshViewport()
		return m, nil

	case typingMsg:
		m.typing = bool(msg)
		m.refreshViewport()
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case welcomeMsg:
		m.welcome = bool(msg)
		if m.welcome {
			m.messages = nil
			m.typing = false
		}
		m.refreshViewport()
		return m, nil

	case sidebarMsg:
		m.sidebarOpen = bool(msg)
		if !m.sidebarVisible() && m.focus == focusSidebar {
			m.focusOn(focusInput)
		}
		m.layout()
		return m, nil

	case inputMsg:
		m.input.SetValue(string(msg))
		return m, nil

	case inputHeightMsg:
		m.input.SetHeight(int(msg))
		m.layout()
		return m, nil

	case sendEnabledMsg:
		m.sendEnabled = bool(msg)
		return m, nil

	case focusMsg:
		m.focusOn(focusInput)
		return m, nil

	case alertMsg:
		m.alert = string(msg)
		return m, nil

	case confirmMsg:
		// Only one prompt is shown; an older one still open is declined.
		m.answerConfirm(false)
		m.confirm = &msg
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case opDoneMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.answerConfirm(false)
		return m, tea.Quit
	}

	switch {
	case m.confirm != nil:
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.answerConfirm(true)
		case key.Matches(msg, m.keys.No):
			m.answerConfirm(false)
		}
		return m, nil
	case m.alert != "":
		m.alert = ""
		return m, nil
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m, m.run("create", func(ctx context.Context) error {
			_, err := m.ctrl.CreateNewChat(ctx)
			return err
		})
	case key.Matches(msg, m.keys.ToggleSidebar):
		m.ctrl.ToggleSidebar()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("refresh", m.ctrl.LoadConversations)
	case key.Matches(msg, m.keys.CopyReply):
		return m, m.copyLastReply()
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.ViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if id, ok := m.cursorID(); ok {
			m.focusOn(focusInput)
			return m, m.run("select", func(ctx context.Context) error {
				return m.ctrl.SelectConversation(ctx, id)
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if id, ok := m.cursorID(); ok {
			return m, m.run("delete", func(ctx context.Context) error {
				return m.ctrl.DeleteConversation(ctx, id)
			})
		}
	case key.Matches(msg, m.keys.SwitchFocus), key.Matches(msg, m.keys.Dismiss):
		m.focusOn(focusInput)
		m.ctrl.DismissSidebar()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m, m.run("send", m.ctrl.SendMessage)
	case key.Matches(msg, m.keys.SwitchFocus):
		if !m.sidebarVisible() {
			m.ctrl.ToggleSidebar()
		}
		m.focusOn(focusSidebar)
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissSidebar()
		return m, nil
	case key.Matches(msg, m.keys.Examples):
		if m.welcome {
			if i := int(msg.String()[len(msg.String())-1] - '1'); i >= 0 && i < len(examplePrompts) {
				m.ctrl.SetPrompt(examplePrompts[i])
			}
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.InputChanged(after)
	}
	return m, cmd
}

func (m *Model) answerConfirm(ok bool) {
	if m.confirm == nil {
		return
	}
	m.confirm.reply <- ok
	m.confirm = nil
}

func (m *Model) focusOn(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) copyLastReply() tea.Cmd {
	var last string
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == models.RoleAssistant {
			last = m.messages[i].Content
			break
		}
	}
	if last == "" {
		return nil
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(last); err != nil {
			return statusMsg("Copy failed: " + err.Error())
		}
		return statusMsg("Copied last reply")
	}
}

func (m Model) narrow() bool {
	return m.width <= m.opts.Breakpoint
}

func (m Model) sidebarVisible() bool {
	return !m.narrow() || m.sidebarOpen
}

func (m Model) activeIndex() int {
	for i, item := range m.items {
		if item.Active {
			return i
		}
	}
	return min(m.cursor, max(len(m.items)-1, 0))
}

func (m Model) cursorID() (int64, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return 0, false
	}
	return m.items[m.cursor].ID, true
}

func (m Model) currentTitle() string {
	for _, item := range m.items {
		if item.Active {
			return item.Title
		}
	}
	return "padchat"
}

// layout sizes the viewport and input to the window.
func (m *Model) layout() {
	mainWidth := m.width
	if !m.narrow() {
		mainWidth -= sidebarWidth + 3
	}
	mainWidth = max(mainWidth, 10)
	m.input.SetWidth(mainWidth - 2)

	// header + input border + help line
	used := 1 + m.input.Height() + 2 + 1
	m.viewport.Width = mainWidth
	m.viewport.Height = max(m.height-used, 1)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.transcript(m.viewport.Width))
	if atBottom {
		m.viewport.GotoBottom()
	}
}
