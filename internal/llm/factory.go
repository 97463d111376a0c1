package llm

import (
	"time"

	"go.uber.org/zap"

	"github.com/Skufu/medicare-assistant/internal/config"
)

// NewChainFromConfig returns the provider chain in fixed order: Gemini,
// OpenAI, Anthropic. Providers without a key are left out.
func NewChainFromConfig(cfg *config.Config, logger *zap.Logger) *Chain {
	var generators []Generator
	if cfg.Gemini.Configured() {
		generators = append(generators, NewGeminiClient(optionsFor(cfg.Gemini, cfg.GatewayTimeout)))
	}
	if cfg.OpenAI.Configured() {
		generators = append(generators, NewOpenAIClient(optionsFor(cfg.OpenAI, cfg.GatewayTimeout)))
	}
	if cfg.Anthropic.Configured() {
		generators = append(generators, NewAnthropicClient(optionsFor(cfg.Anthropic, cfg.GatewayTimeout)))
	}

	chain := NewChain(logger, generators...)
	logger.Info("generation providers", zap.Strings("providers", chain.Providers()))
	return chain
}

func optionsFor(p config.ProviderConfig, timeout time.Duration) Options {
	return Options{
		APIKey:  p.APIKey,
		Model:   p.Model,
		BaseURL: p.BaseURL,
		Timeout: timeout,
	}
}
