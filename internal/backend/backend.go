// Package backend is the HTTP client for the chat backend. The backend owns
// the conversation state; this package only moves requests and bodies.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	historyPath = "/chat/history"
	chatPath    = "/chat"
	sessionPath = "/chat/session/"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// HistoryRecord is one entry of the backend history. Exactly one of User or
// Bot is expected; Role and Content are kept for records in any other shape.
type HistoryRecord struct {
	User    string `json:"user,omitempty"`
	Bot     string `json:"bot,omitempty"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// HistoryResponse is the body of GET /chat/history.
type HistoryResponse struct {
	History []HistoryRecord `json:"history"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

// ErrorResponse is the body the backend sends with a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client talks to the chat backend
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The client must not set
// a whole-request Timeout, which would cut long streamed answers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRequestTimeout bounds the history and delete calls.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new backend client for the given base URL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{},
		requestTimeout: 30 * time.Second,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// History fetches the stored transcript of a session.
func (c *Client) History(ctx context.Context, sessionID string) ([]HistoryRecord, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.baseURL + historyPath + "?sessionId=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Op: "history", Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, &NetworkError{Op: "history", Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, statusError("history", resp)
	}

	var result HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &NetworkError{Op: "history", Err: fmt.Errorf("error parsing response: %w", err)}
	}

	c.logger.Debug().
		Str("session", sessionID).
		Int("records", len(result.History)).
		Msg("history fetched")
	return result.History, nil
}

// Chat sends a query and returns the streamed answer body. The caller must
// close it. Cancelling ctx aborts the stream.
func (c *Client) Chat(ctx context.Context, query, sessionID string) (io.ReadCloser, error) {
	jsonData, err := json.Marshal(ChatRequest{Query: query, SessionID: sessionID})
	if err != nil {
		return nil, &NetworkError{Op: "chat", Err: fmt.Errorf("error marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &NetworkError{Op: "chat", Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, &NetworkError{Op: "chat", Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, statusError("chat", resp)
	}

	return resp.Body, nil
}

// DeleteSession asks the backend to discard the state of a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+sessionPath+url.PathEscape(sessionID), nil)
	if err != nil {
		return &NetworkError{Op: "delete session", Err: fmt.Errorf("error creating request: %w", err)}
	}

	resp, err := c.do(req)
	if err != nil {
		return &NetworkError{Op: "delete session", Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return statusError("delete session", resp)
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	event := c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Dur("elapsed", time.Since(start))
	if err != nil {
		event.Err(err).Msg("request failed")
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	event.Int("status", resp.StatusCode).Msg("request sent")
	return resp, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// statusError builds a NetworkError from a non-success response, using the
// backend's {error: ...} body when it has one.
func statusError(op string, resp *http.Response) *NetworkError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(body))
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		message = errResp.Error
	}

	return &NetworkError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    message,
		Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
}
