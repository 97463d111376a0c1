package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func geminiServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Rest and fluids."}]}}]}`))
	})

	c := NewGeminiClient(Options{APIKey: "test-key", BaseURL: srv.URL})
	text, err := c.Generate(context.Background(), "I have a fever")

	require.NoError(t, err)
	assert.Equal(t, "Rest and fluids.", text)
	assert.Equal(t, "/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "I have a fever", gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, 1200, gotBody.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 40, gotBody.GenerationConfig.TopK)
}

func TestGeminiGenerateFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind FailureKind
		wantCode int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantKind: KindStatus, wantCode: 500},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantKind: KindStatus, wantCode: 429},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantKind: KindMalformed},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantKind: KindMalformed},
		{name: "no parts", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[]}}]}`, wantKind: KindMalformed},
		{name: "error payload", status: http.StatusOK, body: `{"error":{"code":403,"message":"denied"}}`, wantKind: KindStatus, wantCode: 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			c := NewGeminiClient(Options{APIKey: "k", BaseURL: srv.URL})
			text, err := c.Generate(context.Background(), "hello")

			require.Error(t, err)
			assert.Empty(t, text)
			var f *Failure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, GeminiProvider, f.Provider)
			assert.Equal(t, tt.wantKind, f.Kind)
			assert.Equal(t, tt.wantCode, f.StatusCode)
		})
	}
}

func TestGeminiGenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := NewGeminiClient(Options{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestGeminiGenerateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewGeminiClient(Options{APIKey: "k", BaseURL: url})
	_, err := c.Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestGeneratorsWithoutKey(t *testing.T) {
	generators := []Generator{
		NewGeminiClient(Options{APIKey: "  "}),
		NewOpenAIClient(Options{}),
		NewAnthropicClient(Options{}),
	}
	for _, g := range generators {
		t.Run(g.Name(), func(t *testing.T) {
			_, err := g.Generate(context.Background(), "hello")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotConfigured)
			assert.Equal(t, KindUnavailable, KindOf(err))
		})
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Drink water."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{APIKey: "sk-test", BaseURL: srv.URL})
	text, err := c.Generate(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "Drink water.", text)
}

func TestOpenAIGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{APIKey: "sk-test", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "hi")

	require.Error(t, err)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindStatus, f.Kind)
	assert.Equal(t, http.StatusUnauthorized, f.StatusCode)
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Options{APIKey: "sk-test", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "hi")

	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",` +
			`"content":[{"type":"text","text":"Rest and fluids."}],"stop_reason":"end_turn",` +
			`"usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Options{APIKey: "sk-ant-test", BaseURL: srv.URL})
	text, err := c.Generate(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "Rest and fluids.", text)
}

func TestAnthropicGenerateStatusError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
	}{
		{
			name:     "typed error body",
			status:   http.StatusUnauthorized,
			body:     `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unparseable body",
			status:   http.StatusBadGateway,
			body:     `upstream down`,
			wantCode: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewAnthropicClient(Options{APIKey: "sk-ant-test", BaseURL: srv.URL})
			_, err := c.Generate(context.Background(), "hi")

			require.Error(t, err)
			var f *Failure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, KindStatus, f.Kind)
			assert.Equal(t, tt.wantCode, f.StatusCode)
		})
	}
}

func TestAnthropicGenerateNoTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","content":[],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Options{APIKey: "sk-ant-test", BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "hi")

	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestFirstSuccess(t *testing.T) {
	fail := func(msg string) Attempt[string] {
		return func(context.Context) (string, error) { return "", errors.New(msg) }
	}
	ok := func(v string) Attempt[string] {
		return func(context.Context) (string, error) { return v, nil }
	}

	t.Run("first success wins", func(t *testing.T) {
		v, err := FirstSuccess(context.Background(), fail("a"), ok("b"), ok("c"))
		require.NoError(t, err)
		assert.Equal(t, "b", v)
	})

	t.Run("all fail joins errors", func(t *testing.T) {
		_, err := FirstSuccess(context.Background(), fail("a"), fail("b"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a")
		assert.Contains(t, err.Error(), "b")
	})

	t.Run("no attempts", func(t *testing.T) {
		_, err := FirstSuccess[string](context.Background())
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("cancelled context stops early", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		_, err := FirstSuccess(ctx, func(context.Context) (string, error) {
			called = true
			return "x", nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestChainOrderAndFallback(t *testing.T) {
	primary := &MockGenerator{NameValue: "gemini", GenerateFunc: func(context.Context, string) (string, error) {
		return "", &Failure{Provider: "gemini", Kind: KindTimeout, Cause: context.DeadlineExceeded}
	}}
	secondary := &MockGenerator{NameValue: "openai", GenerateFunc: func(context.Context, string) (string, error) {
		return "   ", nil
	}}
	tertiary := &MockGenerator{NameValue: "anthropic", GenerateFunc: func(_ context.Context, p string) (string, error) {
		return "answer to " + p, nil
	}}

	chain := NewChain(zap.NewNop(), primary, nil, secondary, tertiary)
	assert.Equal(t, []string{"gemini", "openai", "anthropic"}, chain.Providers())

	res, err := chain.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", res.Provider)
	assert.Equal(t, "answer to q", res.Text)
	assert.Equal(t, 1, primary.Calls)
	assert.Equal(t, 1, secondary.Calls)
	assert.Equal(t, 1, tertiary.Calls)
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	first := &MockGenerator{GenerateFunc: func(context.Context, string) (string, error) { return "ok", nil }}
	second := &MockGenerator{}

	res, err := NewChain(zap.NewNop(), first, second).Generate(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Zero(t, second.Calls)
}

func TestEmptyChain(t *testing.T) {
	chain := NewChain(zap.NewNop())
	assert.True(t, chain.Empty())

	_, err := chain.Generate(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFailureError(t *testing.T) {
	f := &Failure{Provider: "gemini", Kind: KindStatus, StatusCode: 503, Cause: errors.New("unavailable")}
	assert.Equal(t, "gemini: status (HTTP 503): unavailable", f.Error())
	assert.True(t, strings.HasPrefix(notConfigured("openai").Error(), "openai: unavailable"))
	assert.Equal(t, FailureKind(""), KindOf(errors.New("plain")))
}
