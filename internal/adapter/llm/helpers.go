package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/lokit-s/A2A-protocol/internal/infra/config"
)

// maxResponseBody is the maximum response body size read from LLM APIs.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// NewHTTPClient builds an http.Client with the configured connect and
// response timeouts.
func NewHTTPClient(cfg config.LLMConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.RespTimeoutDuration(),
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.ConnTimeoutDuration(),
			}).DialContext,
		},
	}
}

// doJSONRequest performs a JSON POST and returns the response body. It
// handles request creation, headers, the body size cap, and non-200 status
// codes.
func doJSONRequest(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", httpResp.StatusCode, string(respBody))
	}

	return respBody, nil
}
