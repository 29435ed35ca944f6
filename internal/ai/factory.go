package ai

import (
	"strings"

	"github.com/fdg312/calorie-diary/internal/config"
)

const (
	ModeMock   = "mock"
	ModeOpenAI = "openai"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewProvider выбирает провайдера по AI_MODE. Без OPENAI_API_KEY режим openai
// откатывается на mock, чтобы агент оставался доступен локально.
func NewProvider(cfg *config.Config, logger Logger) Provider {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))

	if mode == ModeOpenAI {
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			logger.Printf("INFO ai: provider=openai model=%s", cfg.OpenAIModel)
			return NewOpenAIProvider(cfg)
		}
		logger.Printf("WARN ai: AI_MODE=openai without OPENAI_API_KEY, fallback=mock")
	}

	logger.Printf("INFO ai: provider=mock")
	return NewMockProvider()
}
