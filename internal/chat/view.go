package chat

import (
	"github.com/RichardoC/padchat/internal/markup"
	"github.com/RichardoC/padchat/internal/models"
)

const (
	NoConversationsText = "No conversations yet"
	TypingText          = "Thinking"
	WelcomeTitle        = "How can I help you today?"
)

// ConversationItem is one row of the conversation list.
type ConversationItem struct {
	ID     int64
	Title  string
	Active bool
}

// MessageView is a message prepared for display.
type MessageView struct {
	Role     models.Role
	Content  string
	Segments []markup.Segment
}

func NewMessageView(role models.Role, content string) MessageView {
	return MessageView{
		Role:     role,
		Content:  content,
		Segments: markup.Parse(content),
	}
}

// View is the display surface driven by the Controller. Methods other than
// Confirm are called with the controller lock held; implementations must not
// call back into the Controller from them.
type View interface {
	// RenderConversations replaces the conversation list. An empty slice
	// shows the NoConversationsText placeholder.
	RenderConversations(items []ConversationItem)
	// RenderMessages replaces the message pane, typing placeholder included.
	RenderMessages(msgs []MessageView)
	AppendMessage(msg MessageView)
	ShowTyping()
	RemoveTyping()
	ScrollToBottom()
	// ShowWelcome shows the welcome screen and clears the message pane.
	ShowWelcome()
	HideWelcome()
	SetSidebarOpen(open bool)
	SetInput(value string)
	SetInputHeight(height int)
	SetSendEnabled(enabled bool)
	FocusInput()
	Alert(message string)
	// Confirm blocks until the user accepts or declines.
	Confirm(prompt string) bool
}
