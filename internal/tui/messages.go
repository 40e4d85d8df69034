package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RichardoC/padchat/internal/chat"
)

// Messages posted by programView. Each maps to one chat.View call.
type (
	conversationsMsg []chat.ConversationItem
	messagesMsg      []chat.MessageView
	appendMsg        chat.MessageView
	typingMsg        bool
	scrollMsg        struct{}
	welcomeMsg       bool
	sidebarMsg       bool
	inputMsg         string
	inputHeightMsg   int
	sendEnabledMsg   bool
	focusMsg         struct{}
	alertMsg         string
	confirmMsg       struct {
		prompt string
		reply  chan<- bool
	}
)

// opDoneMsg reports the end of a controller operation run as a command.
type opDoneMsg struct {
	op  string
	err error
}

type statusMsg string

// mailbox is an unbounded, ordered queue in front of tea.Program.Send.
// Posting never blocks, so the controller can update the view while Update
// is running.
type mailbox struct {
	mu      sync.Mutex
	pending []tea.Msg
	wake    chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (b *mailbox) post(msg tea.Msg) {
	b.mu.Lock()
	b.pending = append(b.pending, msg)
	b.mu.Unlock()
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *mailbox) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.pending
	b.pending = nil
	return batch
}

// pump delivers posted messages in order until ctx is done.
func (b *mailbox) pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}
		for _, msg := range b.drain() {
			send(msg)
		}
	}
}

// programView implements chat.View on top of a running tea.Program.
type programView struct {
	box  *mailbox
	done <-chan struct{}
}

var _ chat.View = (*programView)(nil)

func (v *programView) RenderConversations(items []chat.ConversationItem) {
	v.box.post(conversationsMsg(items))
}

func (v *programView) RenderMessages(msgs []chat.MessageView) { v.box.post(messagesMsg(msgs)) }
func (v *programView) AppendMessage(msg chat.MessageView)     { v.box.post(appendMsg(msg)) }
func (v *programView) ShowTyping()                            { v.box.post(typingMsg(true)) }
func (v *programView) RemoveTyping()                          { v.box.post(typingMsg(false)) }
func (v *programView) ScrollToBottom()                        { v.box.post(scrollMsg{}) }
func (v *programView) ShowWelcome()                           { v.box.post(welcomeMsg(true)) }
func (v *programView) HideWelcome()                           { v.box.post(welcomeMsg(false)) }
func (v *programView) SetSidebarOpen(open bool)               { v.box.post(sidebarMsg(open)) }
func (v *programView) SetInput(value string)                  { v.box.post(inputMsg(value)) }
func (v *programView) SetInputHeight(height int)              { v.box.post(inputHeightMsg(height)) }
func (v *programView) SetSendEnabled(enabled bool)            { v.box.post(sendEnabledMsg(enabled)) }
func (v *programView) FocusInput()                            { v.box.post(focusMsg{}) }
func (v *programView) Alert(message string)                   { v.box.post(alertMsg(message)) }

// Confirm shows a modal and waits for the answer. It gives up with false
// once the program is shutting down.
func (v *programView) Confirm(prompt string) bool {
	reply := make(chan bool, 1)
	v.box.post(confirmMsg{prompt: prompt, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-v.done:
		return false
	}
}
