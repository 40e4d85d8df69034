package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RichardoC/padchat/internal/backend"
	"github.com/RichardoC/padchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController(b *fakeBackend) (*Controller, *recordingView) {
	v := &recordingView{}
	return New(b, v, zap.NewNop(), Options{}), v
}

func TestStartRendersConversations(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 2, Title: "second"}, models.Conversation{ID: 1, Title: "first"})
	c, v := newTestController(b)

	require.NoError(t, c.Start(context.Background()))

	assert.True(t, v.welcome)
	assert.False(t, v.sendEnabled)
	assert.Equal(t, []ConversationItem{
		{ID: 2, Title: "second"},
		{ID: 1, Title: "first"},
	}, v.items)
}

func TestStartWithNoConversations(t *testing.T) {
	c, v := newTestController(newFakeBackend())

	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, 1, v.listRenders)
	assert.NotNil(t, v.items)
	assert.Empty(t, v.items)
}

func TestLoadConversationsFailureKeepsList(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "kept"})
	c, v := newTestController(b)
	require.NoError(t, c.LoadConversations(context.Background()))

	b.listErr = errors.New("connection refused")
	require.Error(t, c.LoadConversations(context.Background()))

	assert.Equal(t, 1, v.listRenders)
	assert.Equal(t, []ConversationItem{{ID: 1, Title: "kept"}}, v.items)
	assert.Empty(t, v.alerts)
	assert.Len(t, c.Snapshot().Conversations, 1)
}

func TestSelectConversation(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"}, models.Conversation{ID: 2, Title: "b"})
	b.messages[2] = []models.Message{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
		{Role: models.RoleUser, Content: "third"},
	}
	c, v := newTestController(b)
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.SelectConversation(context.Background(), 2))

	assert.Equal(t, 1, b.messageCallsFor(2))
	assert.Equal(t, []string{"user: first", "assistant: second", "user: third"}, v.contents())
	assert.Equal(t, []ConversationItem{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b", Active: true},
	}, v.items)
	assert.False(t, v.welcome)
	assert.Positive(t, v.scrolls)

	id, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, int64(2), id)
}

func TestSelectConversationClosesDrawerWhenNarrow(t *testing.T) {
	c, v := newTestController(newFakeBackend(models.Conversation{ID: 1, Title: "a"}))
	c.Resize(500)
	c.ToggleSidebar()
	require.True(t, v.sidebarOpen)

	require.NoError(t, c.SelectConversation(context.Background(), 1))

	assert.False(t, v.sidebarOpen)
}

func TestSelectConversationKeepsSidebarWhenWide(t *testing.T) {
	c, v := newTestController(newFakeBackend(models.Conversation{ID: 1, Title: "a"}))
	c.Resize(1200)
	c.ToggleSidebar()

	require.NoError(t, c.SelectConversation(context.Background(), 1))

	assert.True(t, v.sidebarOpen)
}

func TestSelectConversationMessageFailureStillHidesWelcome(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	b.messagesErr = errors.New("boom")
	c, v := newTestController(b)
	require.NoError(t, c.Start(context.Background()))

	require.Error(t, c.SelectConversation(context.Background(), 1))

	assert.False(t, v.welcome)
	assert.Empty(t, v.alerts)
}

func TestSupersededSelectionIsDiscarded(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "slow"}, models.Conversation{ID: 2, Title: "fast"})
	b.messages[1] = []models.Message{{Role: models.RoleUser, Content: "stale"}}
	b.messages[2] = []models.Message{{Role: models.RoleUser, Content: "fresh"}}
	gate := make(chan struct{})
	b.messagesGate[1] = gate
	c, v := newTestController(b)

	done := make(chan error, 1)
	go func() {
		done <- c.SelectConversation(context.Background(), 1)
	}()
	require.Eventually(t, func() bool { return b.messageCallsFor(1) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.SelectConversation(context.Background(), 2))
	close(gate)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("first selection did not return")
	}
	assert.Equal(t, []string{"user: fresh"}, v.contents())
	id, _ := c.Current()
	assert.Equal(t, int64(2), id)
}

func TestCreateNewChat(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "old"})
	c, v := newTestController(b)
	require.NoError(t, c.Start(context.Background()))

	conv, err := c.CreateNewChat(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []ConversationItem{
		{ID: conv.ID, Title: "New Chat", Active: true},
		{ID: 1, Title: "old"},
	}, v.items)
	assert.Equal(t, 1, b.messageCallsFor(conv.ID))
	assert.False(t, v.welcome)
}

func TestCreateNewChatFailureAlerts(t *testing.T) {
	b := newFakeBackend()
	b.createErr = errors.New("down")
	c, v := newTestController(b)

	_, err := c.CreateNewChat(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"Failed to create new chat"}, v.alerts)
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestDeleteCurrentConversationShowsWelcome(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"}, models.Conversation{ID: 2, Title: "b"})
	b.messages[1] = []models.Message{{Role: models.RoleUser, Content: "hi"}}
	c, v := newTestController(b)
	v.confirmAnswer = true
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	require.NoError(t, c.DeleteConversation(context.Background(), 1))

	assert.Equal(t, []int64{1}, b.deleteCalls)
	assert.Equal(t, []string{"Are you sure you want to delete this conversation?"}, v.confirms)
	_, ok := c.Current()
	assert.False(t, ok)
	assert.True(t, v.welcome)
	assert.Empty(t, v.messages)
	assert.Equal(t, []ConversationItem{{ID: 2, Title: "b"}}, v.items)
}

func TestDeleteOtherConversationKeepsSelection(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"}, models.Conversation{ID: 2, Title: "b"})
	c, v := newTestController(b)
	v.confirmAnswer = true
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	require.NoError(t, c.DeleteConversation(context.Background(), 2))

	id, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.False(t, v.welcome)
	assert.Equal(t, []ConversationItem{{ID: 1, Title: "a", Active: true}}, v.items)
}

func TestDeleteDeclined(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	c, v := newTestController(b)
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.DeleteConversation(context.Background(), 1))

	assert.Empty(t, b.deleteCalls)
	assert.Len(t, v.items, 1)
}

func TestDeleteFailureAlerts(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	b.deleteErr = &backend.APIError{StatusCode: http.StatusInternalServerError, Message: "nope"}
	c, v := newTestController(b)
	v.confirmAnswer = true
	require.NoError(t, c.Start(context.Background()))

	require.Error(t, c.DeleteConversation(context.Background(), 1))

	assert.Equal(t, []string{"Failed to delete conversation"}, v.alerts)
	assert.Len(t, v.items, 1)
}

func TestSendMessage(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "New Chat"})
	b.chatFn = func(id int64, message string) (*models.Message, error) {
		b.conversations[0].Title = "greeting"
		return &models.Message{Role: models.RoleAssistant, Content: "hello there"}, nil
	}
	c, v := newTestController(b)
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	c.InputChanged("  hi  ")
	assert.True(t, v.isSendEnabled())
	require.NoError(t, c.SendMessage(context.Background()))

	assert.Equal(t, []string{"hi"}, b.chatCalls)
	assert.Equal(t, []string{"user: hi", "assistant: hello there"}, v.contents())
	assert.False(t, v.typing)
	assert.Equal(t, "", v.input)
	assert.Equal(t, 1, v.inputHeight)
	assert.False(t, v.sendEnabled)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.Equal(t, []ConversationItem{{ID: 1, Title: "greeting", Active: true}}, v.items)
}

func TestSendMessageCreatesConversation(t *testing.T) {
	b := newFakeBackend()
	c, v := newTestController(b)
	require.NoError(t, c.Start(context.Background()))

	c.InputChanged("start something")
	require.NoError(t, c.SendMessage(context.Background()))

	id, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, []int64{id}, b.chatIDs)
	assert.False(t, v.welcome)
	assert.Equal(t, []string{"user: start something", "assistant: echo: start something"}, v.contents())
}

func TestSendMessageAbortsWhenCreateFails(t *testing.T) {
	b := newFakeBackend()
	b.createErr = errors.New("down")
	c, v := newTestController(b)

	c.InputChanged("hello")
	require.Error(t, c.SendMessage(context.Background()))

	assert.Empty(t, b.chatCalls)
	assert.Equal(t, []string{"Failed to create new chat"}, v.alerts)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.True(t, v.isSendEnabled())
}

func TestSendMessageApplicationError(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	b.chatFn = func(int64, string) (*models.Message, error) {
		return nil, &backend.APIError{StatusCode: http.StatusInternalServerError, Message: "model unavailable"}
	}
	c, v := newTestController(b)
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	c.InputChanged("hi")
	require.NoError(t, c.SendMessage(context.Background()))

	assert.Equal(t, []string{"user: hi", "assistant: Error: model unavailable"}, v.contents())
	assert.False(t, v.typing)
	assert.Equal(t, 0, b.listCalls)
}

func TestSendMessageTransportError(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	b.chatFn = func(int64, string) (*models.Message, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	c, v := newTestController(b)
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	c.InputChanged("hi")
	require.NoError(t, c.SendMessage(context.Background()))

	assert.Equal(t, []string{"user: hi", "assistant: Sorry, there was an error processing your request."}, v.contents())
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestSendMessageGatewayPageShowsGenericReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/conversations":
			w.Write([]byte(`[{"id":1,"title":"a"}]`))
		case "/api/conversations/1/messages":
			w.Write([]byte(`[]`))
		default:
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
		}
	}))
	defer srv.Close()

	v := &recordingView{}
	c := New(backend.New(srv.URL, zap.NewNop()), v, zap.NewNop(), Options{})
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	c.InputChanged("hi")
	require.NoError(t, c.SendMessage(context.Background()))

	assert.Equal(t, []string{"user: hi", "assistant: Sorry, there was an error processing your request."}, v.contents())
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestSendMessageRejectsEmptyInput(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	c, _ := newTestController(b)

	for _, input := range []string{"", "   ", "\n\t"} {
		c.InputChanged(input)
		assert.ErrorIs(t, c.SendMessage(context.Background()), ErrEmptyMessage)
	}
	assert.Empty(t, b.chatCalls)
}

func TestSendMessageRejectsReentry(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"})
	b.chatStarted = make(chan struct{}, 1)
	b.chatGate = make(chan struct{})
	c, v := newTestController(b)
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	c.InputChanged("first")
	done := make(chan error, 1)
	go func() {
		done <- c.SendMessage(context.Background())
	}()
	<-b.chatStarted

	assert.Equal(t, PhaseSending, c.Snapshot().Phase)
	assert.True(t, v.typing)
	c.InputChanged("second")
	assert.False(t, v.isSendEnabled())
	assert.ErrorIs(t, c.SendMessage(context.Background()), ErrBusy)

	close(b.chatGate)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"first"}, b.chatCalls)
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
	assert.True(t, v.isSendEnabled())
}

func TestReplyForAbandonedConversationIsNotShown(t *testing.T) {
	b := newFakeBackend(models.Conversation{ID: 1, Title: "a"}, models.Conversation{ID: 2, Title: "b"})
	b.messages[2] = []models.Message{{Role: models.RoleUser, Content: "other"}}
	b.chatStarted = make(chan struct{}, 1)
	b.chatGate = make(chan struct{})
	c, v := newTestController(b)
	require.NoError(t, c.SelectConversation(context.Background(), 1))

	c.InputChanged("question")
	done := make(chan error, 1)
	go func() {
		done <- c.SendMessage(context.Background())
	}()
	<-b.chatStarted

	require.NoError(t, c.SelectConversation(context.Background(), 2))
	close(b.chatGate)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"user: other"}, v.contents())
	assert.Equal(t, PhaseIdle, c.Snapshot().Phase)
}

func TestSendEnabled(t *testing.T) {
	tests := []struct {
		input string
		phase Phase
		want  bool
	}{
		{"hello", PhaseIdle, true},
		{"  hello  ", PhaseIdle, true},
		{"", PhaseIdle, false},
		{"   ", PhaseIdle, false},
		{"hello", PhaseSending, false},
		{"", PhaseSending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SendEnabled(tt.input, tt.phase), "input=%q phase=%s", tt.input, tt.phase)
	}
}

func TestInputHeight(t *testing.T) {
	assert.Equal(t, 1, InputHeight("", 6))
	assert.Equal(t, 3, InputHeight("a\nb\nc", 6))
	assert.Equal(t, 6, InputHeight("1\n2\n3\n4\n5\n6\n7\n8", 6))
}

func TestInputChangedGrowsInput(t *testing.T) {
	c, v := newTestController(newFakeBackend())

	c.InputChanged("a\nb")
	assert.Equal(t, 2, v.inputHeight)
	assert.True(t, v.sendEnabled)

	c.InputChanged("")
	assert.Equal(t, 1, v.inputHeight)
	assert.False(t, v.sendEnabled)
}

func TestSetPrompt(t *testing.T) {
	c, v := newTestController(newFakeBackend())

	c.SetPrompt("Explain goroutines")

	assert.Equal(t, "Explain goroutines", v.input)
	assert.Equal(t, "Explain goroutines", c.Snapshot().Input)
	assert.True(t, v.sendEnabled)
	assert.True(t, v.focused)
}

func TestSidebar(t *testing.T) {
	c, v := newTestController(newFakeBackend())
	c.Resize(600)

	c.ToggleSidebar()
	assert.True(t, v.sidebarOpen)
	c.DismissSidebar()
	assert.False(t, v.sidebarOpen)

	c.ToggleSidebar()
	c.Resize(1024)
	assert.False(t, v.sidebarOpen)
	assert.False(t, c.Narrow())

	c.ToggleSidebar()
	c.DismissSidebar()
	assert.True(t, v.sidebarOpen, "dismiss only applies to narrow viewports")

	c.CloseSidebar()
	assert.False(t, v.sidebarOpen)
}
