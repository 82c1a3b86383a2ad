// Package llm provides hosted chat model adapters.
// Clean Architecture: Adapters implementing ports.ChatProvider.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// Provider type names accepted by New.
const (
	TypeGemini    = "gemini"
	TypeGroq      = "groq"
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
)

// Default models per provider.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5"

	GroqBaseURL = "https://api.groq.com/openai/v1"
)

// Generation defaults.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// Config selects and configures one provider.
type Config struct {
	Type        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64 // nil selects DefaultTemperature; 0 is honoured
	MaxTokens   int
	HTTPClient  *http.Client
}

// New builds the provider named by cfg.Type. A missing API key is not an
// error here; StreamChat reports it on first use.
func New(ctx context.Context, cfg Config) (ports.ChatProvider, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	switch strings.ToLower(cfg.Type) {
	case TypeGemini, "":
		return NewGemini(ctx, cfg)
	case TypeGroq:
		return NewGroq(cfg), nil
	case TypeOpenAI:
		return NewOpenAI(cfg), nil
	case TypeAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// KeyEnv returns the environment variable holding the key for a provider.
func KeyEnv(providerType string) string {
	switch strings.ToLower(providerType) {
	case TypeGroq:
		return "GROQ_API_KEY"
	case TypeOpenAI:
		return "OPENAI_API_KEY"
	case TypeAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// Float64 returns a pointer to v, for Config.Temperature.
func Float64(v float64) *float64 {
	return &v
}

func (c Config) temperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

func missingKey(providerType string) error {
	return fmt.Errorf("%s is not configured", KeyEnv(providerType))
}

// send delivers tok unless ctx is cancelled first.
func send(ctx context.Context, ch chan<- ports.StreamToken, tok ports.StreamToken) bool {
	select {
	case ch <- tok:
		return true
	case <-ctx.Done():
		return false
	}
}

// mergeTurns joins consecutive turns of the same role. Providers that
// require strict user/assistant alternation reject repeated roles.
func mergeTurns(turns []entities.Turn) []entities.Turn {
	out := make([]entities.Turn, 0, len(turns))
	for _, t := range turns {
		if n := len(out); n > 0 && out[n-1].Role == t.Role {
			out[n-1].Text += "\n\n" + t.Text
			continue
		}
		out = append(out, t)
	}
	return out
}
