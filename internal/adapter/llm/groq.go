// Package llm implements the intent classifier as thin clients over hosted
// chat-completion APIs. The classifier is deliberately opaque: a system
// instruction and user text go in, the model's raw text reply comes out.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/config"
	"github.com/lokit-s/A2A-protocol/internal/infra/tracer"
)

var _ domain.Classifier = (*GroqProvider)(nil)

const groqDefaultBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider talks to Groq's OpenAI-compatible chat completions endpoint.
// Any OpenAI-compatible API works by overriding base_url.
type GroqProvider struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGroqProvider creates a provider with configured timeouts.
func NewGroqProvider(cfg config.LLMConfig, logger *slog.Logger) *GroqProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = groqDefaultBaseURL
	}

	return &GroqProvider{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  NewHTTPClient(cfg),
		logger:  logger,
	}
}

// Classify implements domain.Classifier.
func (p *GroqProvider) Classify(ctx context.Context, system, user string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.classify",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.Name()),
			tracer.StringAttr("llm.model", p.model),
		),
	)
	defer span.End()

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("%w: %v", domain.ErrClassifier, err)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("%w: unmarshal response: %v", domain.ErrClassifier, err)
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("%w: empty choices", domain.ErrClassifier)
		tracer.RecordError(span, err)
		return "", err
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	span.SetAttributes(tracer.Int64Attr("llm.total_tokens", int64(resp.Usage.TotalTokens)))
	tracer.SetOK(span)
	p.logger.Debug("classification completed",
		"provider", p.Name(),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return reply, nil
}

// Name implements domain.Classifier.
func (p *GroqProvider) Name() string { return "groq" }

// --- OpenAI-compatible wire types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
