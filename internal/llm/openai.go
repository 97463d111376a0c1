package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	OpenAIProvider     = "openai"
	defaultOpenAIModel = "gpt-3.5-turbo"
)

// OpenAIClient is the secondary generator.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	configured bool
}

// NewOpenAIClient builds a chat-completions client.
func NewOpenAIClient(opts Options) *OpenAIClient {
	apiKey := strings.TrimSpace(opts.APIKey)
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: opts.timeout()}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		configured: apiKey != "",
	}
}

func (c *OpenAIClient) Name() string { return OpenAIProvider }

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", notConfigured(OpenAIProvider)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   1200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", malformed(OpenAIProvider, "no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusFailure(OpenAIProvider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return statusFailure(OpenAIProvider, reqErr.HTTPStatusCode, err)
	}
	return transportFailure(OpenAIProvider, err)
}
