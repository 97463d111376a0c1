package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const (
	AnthropicProvider     = "anthropic"
	defaultAnthropicModel = "claude-3-haiku-20240307"
)

// AnthropicClient is the last generator tried before the static templates.
type AnthropicClient struct {
	client     *anthropic.Client
	model      string
	configured bool
}

func NewAnthropicClient(opts Options) *AnthropicClient {
	apiKey := strings.TrimSpace(opts.APIKey)
	clientOpts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: opts.timeout()}),
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(strings.TrimSuffix(baseURL, "/")))
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		client:     anthropic.NewClient(apiKey, clientOpts...),
		model:      model,
		configured: apiKey != "",
	}
}

func (c *AnthropicClient) Name() string { return AnthropicProvider }

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", notConfigured(AnthropicProvider)
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1200,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text, nil
		}
	}
	return "", malformed(AnthropicProvider, "no text block in response")
}

// anthropicErrorStatus maps the error type in an Anthropic error body to the
// HTTP status the API documents for it. The decoded body carries no status.
var anthropicErrorStatus = map[string]int{
	"invalid_request_error": http.StatusBadRequest,
	"authentication_error":  http.StatusUnauthorized,
	"permission_error":      http.StatusForbidden,
	"not_found_error":       http.StatusNotFound,
	"request_too_large":     http.StatusRequestEntityTooLarge,
	"rate_limit_error":      http.StatusTooManyRequests,
	"api_error":             http.StatusInternalServerError,
	"overloaded_error":      529,
}

func classifyAnthropicError(err error) *Failure {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return statusFailure(AnthropicProvider, anthropicErrorStatus[string(apiErr.Type)], err)
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode > 0 {
		return statusFailure(AnthropicProvider, reqErr.StatusCode, err)
	}
	return transportFailure(AnthropicProvider, err)
}
