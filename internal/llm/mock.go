package llm

import "context"

// MockGenerator is a configurable Generator for tests.
type MockGenerator struct {
	// NameValue is returned by Name. Defaults to "mock".
	NameValue string
	// GenerateFunc is called by Generate. If nil, Generate returns "".
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	Calls   int
	Prompts []string
}

func (m *MockGenerator) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}
