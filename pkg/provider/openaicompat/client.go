package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/diarydepresiku/moodlog/pkg/debug"
)

// DefaultTimeout bounds a single provider round trip.
const DefaultTimeout = 10 * time.Second

// Client performs requests against one OpenAI-compatible backend. It is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	headers    http.Header

	// modelMapper rewrites the model name before sending. Nil passes it through.
	modelMapper func(string) string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithHeader adds a static header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithModelMapping rewrites requested model names found in mapping.
// Models absent from the map are sent unchanged.
func WithModelMapping(mapping map[string]string) Option {
	return func(c *Client) {
		if len(mapping) == 0 {
			return
		}
		m := make(map[string]string, len(mapping))
		for k, v := range mapping {
			m[k] = v
		}
		c.modelMapper = func(model string) string {
			if mapped, ok := m[model]; ok {
				return mapped
			}
			return model
		}
	}
}

// NewClient creates a Client bound to baseURL (for example
// https://openrouter.ai/api/v1) that authenticates with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Complete sends req to /chat/completions and returns the content of the
// first choice. Every failure is returned as a *CallError; there is no retry.
func (c *Client) Complete(ctx context.Context, req *ChatCompletionRequest) (string, error) {
	if c.modelMapper != nil {
		reqCopy := *req
		reqCopy.Model = c.modelMapper(reqCopy.Model)
		req = &reqCopy
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &CallError{Message: "marshal request: " + err.Error(), Err: err}
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &CallError{Message: "build request: " + err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		httpReq.Header[k] = v
	}

	debug.Log("provider", "request", "url", url, "model", req.Model, "messages", len(req.Messages))
	if debug.TraceIsEnabled("provider") {
		debug.Raw("provider", string(body))
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	debug.Log("provider", "response", "status", httpResp.StatusCode, "elapsed", time.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", MapHTTPError(httpResp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return "", &CallError{
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("decode response: %s", err.Error()),
			Err:        err,
		}
	}

	return FirstContent(&chatResp)
}

// FirstContent returns choices[0].message.content. A reply without choices
// or with null content (refusals, content-filter stops) is a failed call,
// not an empty answer.
func FirstContent(resp *ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &CallError{StatusCode: http.StatusOK, Message: "response has no choices"}
	}
	msg := resp.Choices[0].Message
	if msg.Content == nil {
		return "", &CallError{StatusCode: http.StatusOK, Message: "response message has no content"}
	}
	return *msg.Content, nil
}

// CloseIdleConnections releases idle keep-alive connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}
