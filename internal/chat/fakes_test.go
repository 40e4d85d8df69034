package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/RichardoC/padchat/internal/models"
)

type fakeBackend struct {
	mu            sync.Mutex
	conversations []models.Conversation
	messages      map[int64][]models.Message
	nextID        int64

	listErr     error
	createErr   error
	deleteErr   error
	messagesErr error

	// messagesGate, when set for an id, holds ListMessages until closed.
	messagesGate map[int64]chan struct{}
	// chatStarted receives once per Chat call; chatGate holds Chat until closed.
	chatStarted chan struct{}
	chatGate    chan struct{}
	chatFn      func(id int64, message string) (*models.Message, error)

	listCalls    int
	messageCalls []int64
	deleteCalls  []int64
	chatCalls    []string
	chatIDs      []int64
}

func newFakeBackend(convs ...models.Conversation) *fakeBackend {
	return &fakeBackend{
		conversations: convs,
		messages:      map[int64][]models.Message{},
		messagesGate:  map[int64]chan struct{}{},
		nextID:        100,
	}
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Conversation{}, f.conversations...), nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	conv := models.Conversation{ID: f.nextID, Title: "New Chat"}
	f.conversations = append([]models.Conversation{conv}, f.conversations...)
	return &conv, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeBackend) ListMessages(ctx context.Context, id int64) ([]models.Message, error) {
	f.mu.Lock()
	f.messageCalls = append(f.messageCalls, id)
	gate := f.messagesGate[id]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messagesErr != nil {
		return nil, f.messagesErr
	}
	return append([]models.Message{}, f.messages[id]...), nil
}

func (f *fakeBackend) Chat(ctx context.Context, id int64, message string) (*models.Message, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, message)
	f.chatIDs = append(f.chatIDs, id)
	started, gate, fn := f.chatStarted, f.chatGate, f.chatFn
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if fn != nil {
		return fn(id, message)
	}
	return &models.Message{Role: models.RoleAssistant, Content: fmt.Sprintf("echo: %s", message)}, nil
}

func (f *fakeBackend) messageCallsFor(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, got := range f.messageCalls {
		if got == id {
			n++
		}
	}
	return n
}

type recordingView struct {
	mu            sync.Mutex
	items         []ConversationItem
	listRenders   int
	messages      []MessageView
	typing        bool
	welcome       bool
	sidebarOpen   bool
	input         string
	inputHeight   int
	sendEnabled   bool
	focused       bool
	scrolls       int
	alerts        []string
	confirms      []string
	confirmAnswer bool
}

func (v *recordingView) RenderConversations(items []ConversationItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = items
	v.listRenders++
}

func (v *recordingView) RenderMessages(msgs []MessageView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = msgs
	v.typing = false
}

func (v *recordingView) AppendMessage(msg MessageView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages, msg)
}

func (v *recordingView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typing = true
}

func (v *recordingView) RemoveTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typing = false
}

func (v *recordingView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls++
}

func (v *recordingView) ShowWelcome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.welcome = true
	v.messages = nil
	v.typing = false
}

func (v *recordingView) HideWelcome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.welcome = false
}

func (v *recordingView) SetSidebarOpen(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sidebarOpen = open
}

func (v *recordingView) SetInput(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = value
}

func (v *recordingView) SetInputHeight(height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputHeight = height
}

func (v *recordingView) SetSendEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sendEnabled = enabled
}

func (v *recordingView) FocusInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused = true
}

func (v *recordingView) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, message)
}

func (v *recordingView) Confirm(prompt string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.confirms = append(v.confirms, prompt)
	return v.confirmAnswer
}

func (v *recordingView) contents() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.messages))
	for _, m := range v.messages {
		out = append(out, string(m.Role)+": "+m.Content)
	}
	return out
}

func (v *recordingView) isSendEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sendEnabled
}
