// Package chat holds the client-side state of a chat session and the
// operations that move it: listing, creating, selecting and deleting
// conversations, and the send pipeline.
package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/RichardoC/padchat/internal/backend"
	"github.com/RichardoC/padchat/internal/models"
	"go.uber.org/zap"
)

const (
	confirmDeletePrompt = "Are you sure you want to delete this conversation?"
	createFailedAlert   = "Failed to create new chat"
	deleteFailedAlert   = "Failed to delete conversation"
	sendFailedReply     = "Sorry, there was an error processing your request."
)

var (
	ErrBusy           = errors.New("a message is already being sent")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrNoConversation = errors.New("no conversation selected")
	ErrSuperseded     = errors.New("selection changed before the response arrived")
)

// Backend is the conversation API used by the Controller.
type Backend interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	CreateConversation(ctx context.Context) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id int64) error
	ListMessages(ctx context.Context, id int64) ([]models.Message, error)
	Chat(ctx context.Context, id int64, message string) (*models.Message, error)
}

var _ Backend = (*backend.Client)(nil)

// Controller is safe for use from multiple goroutines. The lock is never
// held across backend calls.
type Controller struct {
	backend Backend
	view    View
	logger  *zap.Logger
	opts    Options

	mu sync.Mutex
	s  session
}

func New(b Backend, view View, logger *zap.Logger, opts Options) *Controller {
	return &Controller{
		backend: b,
		view:    view,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// Start shows the welcome screen and loads the conversation list.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.view.ShowWelcome()
	c.updateSendButtonLocked()
	c.mu.Unlock()
	return c.LoadConversations(ctx)
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Conversations: slices.Clone(c.s.conversations),
		CurrentID:     c.s.currentID,
		HasCurrent:    c.s.hasCurrent,
		Phase:         c.s.phase,
		Input:         c.s.input,
		SidebarOpen:   c.s.sidebarOpen,
		Width:         c.s.width,
	}
}

func (c *Controller) Current() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.currentID, c.s.hasCurrent
}

// LoadConversations replaces the cached list. Failures are logged only and
// leave the rendered list as it was.
func (c *Controller) LoadConversations(ctx context.Context) error {
	convs, err := c.backend.ListConversations(ctx)
	if err != nil {
		c.logger.Error("Failed to load conversations", zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.conversations = convs
	c.renderConversationsLocked()
	return nil
}

// CreateNewChat creates a conversation, puts it at the top of the list and
// selects it.
func (c *Controller) CreateNewChat(ctx context.Context) (*models.Conversation, error) {
	conv, err := c.backend.CreateConversation(ctx)
	if err != nil {
		c.logger.Error("Failed to create conversation", zap.Error(err))
		c.alert(createFailedAlert)
		return nil, err
	}

	c.mu.Lock()
	c.s.conversations = append([]models.Conversation{*conv}, c.s.conversations...)
	c.mu.Unlock()

	c.logger.Debug("Created conversation", zap.Int64("conversationID", conv.ID))
	// A failed message load is logged by SelectConversation and does not
	// undo the creation.
	_ = c.SelectConversation(ctx, conv.ID)
	return conv, nil
}

// SelectConversation makes id current and loads its messages. Any message
// load still running for an earlier selection is cancelled.
func (c *Controller) SelectConversation(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.s.currentID, c.s.hasCurrent = id, true
	c.renderConversationsLocked()
	gen := c.nextGenerationLocked()
	loadCtx, cancel := context.WithCancel(ctx)
	c.s.cancelLoad = cancel
	c.mu.Unlock()
	defer cancel()

	err := c.loadMessages(loadCtx, id, gen)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.s.generation {
		return ErrSuperseded
	}
	c.view.HideWelcome()
	if c.narrowLocked() {
		c.setSidebarLocked(false)
	}
	return err
}

// LoadMessages replaces the message pane with the messages of id, unless
// the selection changes while they are fetched.
func (c *Controller) LoadMessages(ctx context.Context, id int64) error {
	c.mu.Lock()
	gen := c.s.generation
	c.mu.Unlock()
	return c.loadMessages(ctx, id, gen)
}

func (c *Controller) loadMessages(ctx context.Context, id int64, gen uint64) error {
	msgs, err := c.backend.ListMessages(ctx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug("Message load cancelled", zap.Int64("conversationID", id))
			return ErrSuperseded
		}
		c.logger.Error("Failed to load messages", zap.Int64("conversationID", id), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.s.generation {
		c.logger.Debug("Discarding stale messages", zap.Int64("conversationID", id))
		return ErrSuperseded
	}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, NewMessageView(m.Role, m.Content))
	}
	c.view.RenderMessages(views)
	c.view.ScrollToBottom()
	return nil
}

// DeleteConversation asks for confirmation, then deletes id. A declined
// confirmation is not an error.
func (c *Controller) DeleteConversation(ctx context.Context, id int64) error {
	if !c.view.Confirm(confirmDeletePrompt) {
		return nil
	}

	if err := c.backend.DeleteConversation(ctx, id); err != nil {
		c.logger.Error("Failed to delete conversation", zap.Int64("conversationID", id), zap.Error(err))
		c.alert(deleteFailedAlert)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.conversations = slices.DeleteFunc(c.s.conversations, func(conv models.Conversation) bool {
		return conv.ID == id
	})
	if c.s.hasCurrent && c.s.currentID == id {
		c.s.currentID, c.s.hasCurrent = 0, false
		c.nextGenerationLocked()
		c.view.ShowWelcome()
	}
	c.renderConversationsLocked()
	return nil
}

// SendMessage runs the send pipeline for the current input. Only one send
// can be in flight; the failure of a send is reported in the transcript,
// not through the returned error.
func (c *Controller) SendMessage(ctx context.Context) error {
	c.mu.Lock()
	text := strings.TrimSpace(c.s.input)
	switch {
	case text == "":
		c.mu.Unlock()
		return ErrEmptyMessage
	case c.s.phase == PhaseSending:
		c.mu.Unlock()
		return ErrBusy
	}
	c.s.phase = PhaseSending
	c.updateSendButtonLocked()
	hasCurrent := c.s.hasCurrent
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.s.phase = PhaseIdle
		c.updateSendButtonLocked()
		c.mu.Unlock()
	}()

	if !hasCurrent {
		if _, err := c.CreateNewChat(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	if !c.s.hasCurrent {
		c.mu.Unlock()
		return ErrNoConversation
	}
	id, gen := c.s.currentID, c.s.generation
	c.s.input = ""
	c.view.SetInput("")
	c.view.SetInputHeight(InputHeight("", c.opts.MaxInputHeight))
	c.view.AppendMessage(NewMessageView(models.RoleUser, text))
	c.view.ShowTyping()
	c.view.ScrollToBottom()
	c.mu.Unlock()

	reply, err := c.backend.Chat(ctx, id, text)
	if err != nil {
		c.logger.Error("Failed to send message", zap.Int64("conversationID", id), zap.Error(err))
	}

	c.mu.Lock()
	if gen == c.s.generation {
		c.view.RemoveTyping()
		c.view.AppendMessage(replyView(reply, err))
		c.view.ScrollToBottom()
	} else {
		c.logger.Debug("Selection changed during send, reply not shown", zap.Int64("conversationID", id))
	}
	c.mu.Unlock()

	if err == nil {
		// The backend may have titled the conversation from this message.
		_ = c.LoadConversations(ctx)
	}
	return nil
}

func replyView(reply *models.Message, err error) MessageView {
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return NewMessageView(models.RoleAssistant, reply.Content)
	case errors.As(err, &apiErr):
		return NewMessageView(models.RoleAssistant, "Error: "+apiErr.Message)
	default:
		return NewMessageView(models.RoleAssistant, sendFailedReply)
	}
}

// InputChanged records what the user typed.
func (c *Controller) InputChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.input = text
	c.view.SetInputHeight(InputHeight(text, c.opts.MaxInputHeight))
	c.updateSendButtonLocked()
}

// SetPrompt fills the input, as the example prompts on the welcome screen do.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.input = prompt
	c.view.SetInput(prompt)
	c.view.SetInputHeight(InputHeight(prompt, c.opts.MaxInputHeight))
	c.updateSendButtonLocked()
	c.view.FocusInput()
}

func (c *Controller) ToggleSidebar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSidebarLocked(!c.s.sidebarOpen)
}

func (c *Controller) CloseSidebar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setSidebarLocked(false)
}

// DismissSidebar closes an open drawer on a narrow viewport, the way a
// click outside of it does.
func (c *Controller) DismissSidebar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.narrowLocked() && c.s.sidebarOpen {
		c.setSidebarLocked(false)
	}
}

// Resize records the viewport width. Growing past the breakpoint closes the
// drawer since the sidebar is then always shown.
func (c *Controller) Resize(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.width = width
	if !c.narrowLocked() && c.s.sidebarOpen {
		c.setSidebarLocked(false)
	}
}

func (c *Controller) Narrow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.narrowLocked()
}

func (c *Controller) narrowLocked() bool {
	return c.s.width <= c.opts.Breakpoint
}

func (c *Controller) setSidebarLocked(open bool) {
	c.s.sidebarOpen = open
	c.view.SetSidebarOpen(open)
}

func (c *Controller) nextGenerationLocked() uint64 {
	c.s.generation++
	if c.s.cancelLoad != nil {
		c.s.cancelLoad()
		c.s.cancelLoad = nil
	}
	return c.s.generation
}

func (c *Controller) alert(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Alert(msg)
}

func (c *Controller) updateSendButtonLocked() {
	c.view.SetSendEnabled(SendEnabled(c.s.input, c.s.phase))
}

func (c *Controller) renderConversationsLocked() {
	items := make([]ConversationItem, 0, len(c.s.conversations))
	for _, conv := range c.s.conversations {
		items = append(items, ConversationItem{
			ID:     conv.ID,
			Title:  conv.Title,
			Active: c.s.hasCurrent && conv.ID == c.s.currentID,
		})
	}
	c.view.RenderConversations(items)
}
