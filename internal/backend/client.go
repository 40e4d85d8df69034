// Package backend is the HTTP client for the conversation API the chat
// client talks to.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RichardoC/padchat/internal/models"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrUnexpectedResponse marks a non-2xx response whose body carries no
// application error.
var ErrUnexpectedResponse = errors.New("unexpected response from backend")

// APIError is returned when the backend answers with a non-2xx status and
// an {"error": ...} body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsAPIError reports whether err is an application level error from the
// backend, as opposed to a transport or decoding failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
	}
}

func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	conversations := make([]models.Conversation, 0)
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &conversations); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

func (c *Client) CreateConversation(ctx context.Context) (*models.Conversation, error) {
	var conv models.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/conversations", nil, &conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conv, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/conversations/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete conversation %d: %w", id, err)
	}
	return nil
}

func (c *Client) ListMessages(ctx context.Context, id int64) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/conversations/%d/messages", id), nil, &messages); err != nil {
		return nil, fmt.Errorf("list messages of %d: %w", id, err)
	}
	return messages, nil
}

// Chat posts a user message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, id int64, message string) (*models.Message, error) {
	var resp models.ChatResponse
	path := fmt.Sprintf("/api/conversations/%d/chat", id)
	if err := c.do(ctx, http.MethodPost, path, models.ChatRequest{Message: message}, &resp); err != nil {
		return nil, fmt.Errorf("chat in %d: %w", id, err)
	}
	if resp.AIMessage == nil {
		return nil, fmt.Errorf("chat in %d: response has no ai_message", id)
	}
	return resp.AIMessage, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (err error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("requestID", requestID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("Request failed", zap.Error(err))
		return err
	}
	defer func() {
		err = multierr.Append(err, resp.Body.Close())
	}()

	logger.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError turns a non-2xx response into an *APIError when the body
// is an {"error": ...} document. Any other body, such as a proxy's HTML error
// page, is a plain ErrUnexpectedResponse.
func decodeAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%w: status %d: %w", ErrUnexpectedResponse, resp.StatusCode, err)
	}
	var body models.ErrorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	text := strings.TrimSpace(string(raw))
	if r := []rune(text); len(r) > 200 {
		text = string(r[:200])
	}
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d: %s", ErrUnexpectedResponse, resp.StatusCode, text)
}
