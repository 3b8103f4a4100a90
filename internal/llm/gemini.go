package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient serves the same Completer contract through Google's
// Generative Language API. The configured model replaces the per-type one.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	g := &GeminiClient{model: model}
	if apiKey == "" {
		return g, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	if g.client == nil {
		return nil, &ConfigurationError{Message: "completion provider API key is not configured"}
	}

	attemptCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(attemptCtx, genai.Text(req.Prompt))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, &ProviderTimeoutError{Timeout: req.Timeout}
	}
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Status: apiErr.Code, Body: apiErr.Body, Err: err}
		}
		return nil, &ProviderError{Err: err}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, &ProviderError{Status: http.StatusOK, Err: fmt.Errorf("encode gemini response: %w", err)}
	}
	text := geminiText(resp)
	if text == "" {
		return nil, &ProviderError{Status: http.StatusOK, Body: string(body), Err: errors.New("response has no text candidates")}
	}

	return &Completion{
		StatusCode: http.StatusOK,
		Body:       body,
		Text:       text,
		Model:      g.model,
		Attempts:   1,
	}, nil
}

// Check verifies the credential by fetching the first available model.
func (g *GeminiClient) Check(ctx context.Context) error {
	if g.client == nil {
		return &ConfigurationError{Message: "completion provider API key is not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := g.client.ListModels(ctx).Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("failed to list Gemini models: %w", err)
	}
	return nil
}

func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}
