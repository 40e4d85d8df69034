package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/RichardoC/padchat/internal/db"
	"github.com/RichardoC/padchat/internal/models"
)

const (
	systemPrompt = `You are a helpful assistant in a chat application.
Answer in plain text. Use Markdown code fences for code and backticks for
inline identifiers.`

	historyLimit    = 20
	maxTitleRunes   = 40
	generateTimeout = 30 * time.Second
)

var ErrEmptyCompletion = errors.New("model returned no content")

type Service struct {
	llm    llms.Model
	db     *db.Database
	logger *zap.Logger
}

// New connects to an OpenAI compatible endpoint, such as a local Ollama.
func New(baseURL, token, model string, database *db.Database, logger *zap.Logger) (*Service, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return NewWithModel(llm, database, logger), nil
}

func NewWithModel(model llms.Model, database *db.Database, logger *zap.Logger) *Service {
	return &Service{llm: model, db: database, logger: logger}
}

// Reply stores the user's message, asks the model for an answer using the
// recent history of the conversation and stores that answer too. The first
// message of an untitled conversation also names it.
func (s *Service) Reply(ctx context.Context, conversationID int64, content string) (*models.Message, error) {
	conv, err := s.db.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	history, err := s.db.ListMessages(ctx, conversationID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	userMsg := &models.Message{ConvID: conversationID, Role: models.RoleUser, Content: content}
	if err := s.db.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	if len(history) == 0 && conv.Title == models.DefaultConversationTitle {
		if title := Title(content); title != "" {
			if err := s.db.UpdateConversationTitle(ctx, conversationID, title); err != nil {
				s.logger.Warn("Failed to title conversation",
					zap.Int64("conversationID", conversationID),
					zap.Error(err))
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := s.llm.GenerateContent(ctx, prompt(history, content))
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, ErrEmptyCompletion
	}

	reply := &models.Message{
		ConvID:  conversationID,
		Role:    models.RoleAssistant,
		Content: strings.TrimSpace(resp.Choices[0].Content),
	}
	if err := s.db.SaveMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.logger.Debug("Generated reply",
		zap.Int64("conversationID", conversationID),
		zap.Int("historyMessages", len(history)),
		zap.Int("replyLength", len(reply.Content)))
	return reply, nil
}

func prompt(history []models.Message, content string) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+2)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case models.RoleAssistant:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		}
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, content))
}

// Title derives a conversation title from its first message: whitespace is
// collapsed and the result cut to 40 runes.
func Title(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if r := []rune(title); len(r) > maxTitleRunes {
		title = strings.TrimSpace(string(r[:maxTitleRunes]))
	}
	return title
}
