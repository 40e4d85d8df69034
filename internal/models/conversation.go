package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	ID        int64     `json:"id,omitempty"`
	ConvID    int64     `json:"conversation_id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultConversationTitle names a conversation until its first message
// gives it a title.
const DefaultConversationTitle = "New Chat"

type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the body of POST /api/conversations/{id}/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries either the assistant reply or an application error.
type ChatResponse struct {
	AIMessage *Message `json:"ai_message,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
