package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/asksql/asksql-engine/pkg/config"
)

// NewFromConfig creates the LLM client selected by configuration.
// Returns the LLMClient interface to enable dependency injection of mocks.
func NewFromConfig(cfg *config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "openai":
		client, err := NewOpenAIClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil

	case "anthropic":
		client, err := NewAnthropicClient(cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
