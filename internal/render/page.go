// Package render draws the chat page as HTML. Page keeps the same state a
// browser document would and implements chat.View, so a Controller can
// drive it directly.
package render

import (
	"bytes"
	"html/template"
	"io"
	"sync"

	"github.com/RichardoC/padchat/internal/chat"
	"github.com/RichardoC/padchat/internal/markup"
	"github.com/RichardoC/padchat/internal/models"
)

var funcs = template.FuncMap{
	"format": markup.HTML,
	"icon": func(role models.Role) string {
		if role == models.RoleUser {
			return "fas fa-user"
		}
		return "fas fa-robot"
	},
}

var pageTmpl = template.Must(template.New("page").Funcs(funcs).Parse(pageHTML))

type Page struct {
	mu sync.Mutex

	Title         string
	Conversations []chat.ConversationItem
	Messages      []chat.MessageView
	Typing        bool
	Welcome       bool
	SidebarOpen   bool
	Input         string
	InputHeight   int
	SendEnabled   bool
	Alerts        []string

	// ConfirmAnswer is what Confirm returns; a document has no one to ask.
	ConfirmAnswer bool
}

var _ chat.View = (*Page)(nil)

func NewPage(title string) *Page {
	return &Page{Title: title, Welcome: true, InputHeight: 1}
}

func (p *Page) RenderConversations(items []chat.ConversationItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Conversations = items
}

func (p *Page) RenderMessages(msgs []chat.MessageView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = msgs
	p.Typing = false
}

func (p *Page) AppendMessage(msg chat.MessageView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, msg)
}

func (p *Page) ShowTyping() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Typing = true
}

func (p *Page) RemoveTyping() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Typing = false
}

// ScrollToBottom is a no-op; the rendered document has no scroll position.
func (p *Page) ScrollToBottom() {}

func (p *Page) ShowWelcome() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Welcome = true
	p.Messages = nil
	p.Typing = false
}

func (p *Page) HideWelcome() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Welcome = false
}

func (p *Page) SetSidebarOpen(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SidebarOpen = open
}

func (p *Page) SetInput(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Input = value
}

func (p *Page) SetInputHeight(height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.InputHeight = height
}

func (p *Page) SetSendEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SendEnabled = enabled
}

func (p *Page) FocusInput() {}

func (p *Page) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Alerts = append(p.Alerts, message)
}

func (p *Page) Confirm(string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ConfirmAnswer
}

type pageData struct {
	*Page
	NoConversationsText string
	TypingText          string
	WelcomeTitle        string
	InputRows           int
}

func (p *Page) WriteHTML(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, pageData{
		Page:                p,
		NoConversationsText: chat.NoConversationsText,
		TypingText:          chat.TypingText,
		WelcomeTitle:        chat.WelcomeTitle,
		InputRows:           max(p.InputHeight, 1),
	})
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

func (p *Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := p.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
