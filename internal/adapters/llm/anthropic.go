package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

type messageStreamer interface {
	NewStreaming(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

// AnthropicAdapter streams from the Anthropic Messages API.
type AnthropicAdapter struct {
	messages    messageStreamer
	model       string
	temperature float64
	maxTokens   int
	hasKey      bool
}

// NewAnthropic creates an Anthropic adapter.
func NewAnthropic(cfg Config) *AnthropicAdapter {
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}

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
	client := anthropic.NewClient(opts...)

	return &AnthropicAdapter{
		messages:    &client.Messages,
		model:       cfg.Model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.MaxTokens,
		hasKey:      cfg.APIKey != "",
	}
}

// Name implements ports.ChatProvider.
func (a *AnthropicAdapter) Name() string {
	return TypeAnthropic
}

// StreamChat implements ports.ChatProvider.
func (a *AnthropicAdapter) StreamChat(ctx context.Context, conv entities.Conversation) (<-chan ports.StreamToken, error) {
	if !a.hasKey {
		return nil, missingKey(TypeAnthropic)
	}

	stream := a.messages.NewStreaming(ctx, a.buildParams(conv))
	if stream == nil {
		return nil, errors.New("anthropic stream not available")
	}

	ch := make(chan ports.StreamToken, 100)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			switch ev := stream.Current().AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				text := ev.Delta.AsTextDelta().Text
				if text == "" {
					continue
				}
				if !send(ctx, ch, ports.StreamToken{Content: text}) {
					return
				}
			case anthropic.MessageStopEvent:
				send(ctx, ch, ports.StreamToken{Done: true})
				return
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

func (a *AnthropicAdapter) buildParams(conv entities.Conversation) anthropic.MessageNewParams {
	turns := mergeTurns(conv.Turns)
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == entities.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(a.maxTokens),
		Messages:    messages,
		Temperature: param.NewOpt(a.temperature),
	}
	if conv.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: conv.System}}
	}
	return params
}
