package llm

import (
	"fmt"
	"log/slog"

	"github.com/lokit-s/A2A-protocol/internal/domain"
	"github.com/lokit-s/A2A-protocol/internal/infra/config"
)

// New constructs the configured classifier provider wrapped with circuit
// breaker protection.
func New(cfg config.LLMConfig, logger *slog.Logger) (domain.Classifier, error) {
	var provider domain.Classifier

	switch cfg.Provider {
	case "groq":
		provider = NewGroqProvider(cfg, logger)
	case "bedrock":
		p, err := NewBedrockProvider(cfg, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return NewCircuitBreakerClassifier(provider, logger), nil
}
