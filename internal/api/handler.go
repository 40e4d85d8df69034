package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/RichardoC/padchat/internal/db"
	"github.com/RichardoC/padchat/internal/models"
)

// Replier produces the assistant's answer to a user message and persists
// both.
type Replier interface {
	Reply(ctx context.Context, conversationID int64, content string) (*models.Message, error)
}

type Handler struct {
	db     *db.Database
	llm    Replier
	logger *zap.Logger
}

func NewHandler(database *db.Database, replier Replier, logger *zap.Logger) *Handler {
	return &Handler{
		db:     database,
		llm:    replier,
		logger: logger,
	}
}

// Routes mounts the conversation API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", h.ListConversations)
		r.Post("/", h.CreateConversation)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.DeleteConversation)
			r.Get("/messages", h.GetMessages)
			r.Post("/chat", h.Chat)
		})
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())))
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.db.ListConversations(r.Context())
	if err != nil {
		h.logger.Error("Failed to get conversations",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Debug("Retrieved conversations", zap.Int("count", len(conversations)))
	h.writeJSON(w, http.StatusOK, conversations)
}

// CreateConversation accepts an optional {"title": ...} body.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = models.DefaultConversationTitle
	}

	conversation, err := h.db.CreateConversation(r.Context(), title)
	if err != nil {
		h.logger.Error("Failed to create conversation", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, conversation)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	convID, ok := h.conversationID(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteConversation(r.Context(), convID); err != nil {
		h.writeDBError(w, "Failed to delete conversation", convID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	convID, ok := h.conversationID(w, r)
	if !ok {
		return
	}

	if _, err := h.db.GetConversation(r.Context(), convID); err != nil {
		h.writeDBError(w, "Failed to get conversation", convID, err)
		return
	}

	messages, err := h.db.ListMessages(r.Context(), convID, 0)
	if err != nil {
		h.writeDBError(w, "Failed to get messages", convID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, messages)
}

// Chat answers with {"ai_message": ...}, or {"error": ...} when the message
// could not be processed.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	convID, ok := h.conversationID(w, r)
	if !ok {
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.llm.Reply(r.Context(), convID, req.Message)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		h.logger.Error("Failed to process message",
			zap.Int64("conversationID", convID),
			zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, models.ChatResponse{
			Error: fmt.Sprintf("Failed to process message: %v", err),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, models.ChatResponse{AIMessage: reply})
}

func (h *Handler) conversationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid conversation ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeDBError(w http.ResponseWriter, msg string, convID int64, err error) {
	if errors.Is(err, db.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	h.logger.Error(msg, zap.Int64("conversationID", convID), zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
