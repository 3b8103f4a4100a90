package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Groq's OpenAI-compatible API root.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Client calls an OpenAI-compatible /chat/completions endpoint with a bearer key.
type Client struct {
	apiKey string
	api    *openai.Client
}

type ClientOption func(*openai.ClientConfig)

// WithHTTPClient replaces the underlying HTTP client. Its transport is wrapped
// so that raw status and body stay available for diagnostics.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(cfg *openai.ClientConfig) {
		cfg.HTTPClient = hc
	}
}

func NewClient(apiKey, baseURL string, opts ...ClientOption) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{}
	for _, opt := range opts {
		opt(&cfg)
	}

	hc := *cfg.HTTPClient
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &recordingTransport{base: base}
	cfg.HTTPClient = &hc

	return &Client{
		apiKey: apiKey,
		api:    openai.NewClientWithConfig(cfg),
	}
}

func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	if c.apiKey == "" {
		return nil, &ConfigurationError{Message: "completion provider API key is not configured"}
	}

	attemptCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	rec := &exchange{}
	attemptCtx = context.WithValue(attemptCtx, exchangeKey{}, rec)

	resp, err := c.api.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, &ProviderTimeoutError{Timeout: req.Timeout}
	}
	if rec.status != 0 && (rec.status < 200 || rec.status > 299) {
		return nil, &ProviderError{Status: rec.status, Body: string(rec.body)}
	}
	if err != nil {
		return nil, &ProviderError{Status: rec.status, Body: string(rec.body), Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Status: rec.status, Body: string(rec.body), Err: errors.New("response has no choices")}
	}

	return &Completion{
		StatusCode: rec.status,
		Body:       rec.body,
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		Attempts:   1,
	}, nil
}

// Check verifies the credential once by listing the provider's models.
func (c *Client) Check(ctx context.Context) error {
	if c.apiKey == "" {
		return &ConfigurationError{Message: "completion provider API key is not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("failed to list provider models: %w", err)
	}
	return nil
}

type exchangeKey struct{}

// exchange holds the raw HTTP outcome of one attempt.
type exchange struct {
	status int
	body   []byte
}

type recordingTransport struct {
	base http.RoundTripper
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	rec, ok := req.Context().Value(exchangeKey{}).(*exchange)
	if !ok {
		return res, nil
	}

	body, readErr := io.ReadAll(res.Body)
	res.Body.Close()
	rec.status = res.StatusCode
	rec.body = body
	res.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil {
		return nil, readErr
	}
	return res, nil
}
