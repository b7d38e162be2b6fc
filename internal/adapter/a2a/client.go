// Package a2a implements the agent-to-agent HTTP transport: every agent
// serves /ask, /tasks/send and /.well-known/agent.json, and calls peers
// through Client. The payload on the wire is always JSON.
package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

// maxReplyBody caps how much of a peer's reply is read.
const maxReplyBody = 4 * 1024 * 1024 // 4 MB

var _ domain.Asker = (*Client)(nil)

// Client calls a single remote agent.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the agent at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// askRequest is the body of POST /ask.
type askRequest struct {
	Text string `json:"text"`
}

// Ask submits a free-text command and returns the agent's raw JSON reply.
func (c *Client) Ask(ctx context.Context, text string) (json.RawMessage, error) {
	body, err := json.Marshal(askRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal ask: %w", err)
	}

	raw, err := c.post(ctx, c.baseURL+"/ask", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAgentUnavailable, err)
	}
	return raw, nil
}

// SendTask submits a task object and returns the completed task.
func (c *Client) SendTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}

	raw, err := c.post(ctx, c.baseURL+"/tasks/send", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAgentUnavailable, err)
	}

	var result domain.Task
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal task reply: %w", err)
	}
	return &result, nil
}

// FetchCard retrieves the agent's metadata document. Used as the liveness
// probe: any 2xx means online.
func (c *Client) FetchCard(ctx context.Context) (*domain.AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/.well-known/agent.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAgentUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: agent card status %d", domain.ErrAgentUnavailable, resp.StatusCode)
	}

	var card domain.AgentCard
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBody)).Decode(&card); err != nil {
		return nil, fmt.Errorf("decode agent card: %w", err)
	}
	return &card, nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBody))
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
