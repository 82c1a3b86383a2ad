package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

type chatCompletions interface {
	NewStreaming(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) *ssestream.Stream[openai.ChatCompletionChunk]
}

// OpenAIAdapter streams from any OpenAI-compatible chat completions API.
// Groq is served by the same adapter with a different base URL.
type OpenAIAdapter struct {
	name        string
	completions chatCompletions
	model       string
	temperature float64
	maxTokens   int
	hasKey      bool
}

// NewOpenAI creates an adapter for the OpenAI API.
func NewOpenAI(cfg Config) *OpenAIAdapter {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	return newOpenAICompatible(TypeOpenAI, cfg)
}

// NewGroq creates an adapter for Groq's OpenAI-compatible endpoint.
func NewGroq(cfg Config) *OpenAIAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	return newOpenAICompatible(TypeGroq, cfg)
}

func newOpenAICompatible(name string, cfg Config) *OpenAIAdapter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	client := openai.NewClient(opts...)

	return &OpenAIAdapter{
		name:        name,
		completions: &client.Chat.Completions,
		model:       cfg.Model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.MaxTokens,
		hasKey:      cfg.APIKey != "",
	}
}

// Name implements ports.ChatProvider.
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// StreamChat implements ports.ChatProvider.
func (a *OpenAIAdapter) StreamChat(ctx context.Context, conv entities.Conversation) (<-chan ports.StreamToken, error) {
	if !a.hasKey {
		return nil, missingKey(a.name)
	}

	stream := a.completions.NewStreaming(ctx, a.buildParams(conv))
	if stream == nil {
		return nil, errors.New("openai stream not available")
	}

	ch := make(chan ports.StreamToken, 100)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !send(ctx, ch, ports.StreamToken{Content: choice.Delta.Content}) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, ch, ports.StreamToken{Done: true, Error: err})
			return
		}
		send(ctx, ch, ports.StreamToken{Done: true})
	}()

	return ch, nil
}

func (a *OpenAIAdapter) buildParams(conv entities.Conversation) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv.Turns)+1)
	if conv.System != "" {
		messages = append(messages, openai.SystemMessage(conv.System))
	}
	for _, t := range conv.Turns {
		if t.Role == entities.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Text))
		} else {
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(a.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(a.maxTokens)),
		Temperature:         openai.Float(a.temperature),
	}
}
