package llm

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// GeminiAdapter streams from the Gemini API.
type GeminiAdapter struct {
	models      contentStreamer
	model       string
	temperature float64
	maxTokens   int
}

// NewGemini creates a Gemini adapter. Without an API key the client is not
// built and StreamChat reports the missing key.
func NewGemini(ctx context.Context, cfg Config) (*GeminiAdapter, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	a := &GeminiAdapter{
		model:       cfg.Model,
		temperature: cfg.temperature(),
		maxTokens:   cfg.MaxTokens,
	}
	if cfg.APIKey == "" {
		return a, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	a.models = client.Models
	return a, nil
}

// Name implements ports.ChatProvider.
func (a *GeminiAdapter) Name() string {
	return TypeGemini
}

// StreamChat implements ports.ChatProvider.
func (a *GeminiAdapter) StreamChat(ctx context.Context, conv entities.Conversation) (<-chan ports.StreamToken, error) {
	if a.models == nil {
		return nil, missingKey(TypeGemini)
	}

	contents, config := a.buildRequest(conv)
	seq := a.models.GenerateContentStream(ctx, a.model, contents, config)

	ch := make(chan ports.StreamToken, 100)
	go func() {
		defer close(ch)

		for resp, err := range seq {
			if err != nil {
				send(ctx, ch, ports.StreamToken{Done: true, Error: err})
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !send(ctx, ch, ports.StreamToken{Content: text}) {
				return
			}
		}
		send(ctx, ch, ports.StreamToken{Done: true})
	}()

	return ch, nil
}

func (a *GeminiAdapter) buildRequest(conv entities.Conversation) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(conv.Turns))
	for _, t := range conv.Turns {
		var role genai.Role = genai.RoleUser
		if t.Role == entities.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(a.temperature)),
		MaxOutputTokens: int32(a.maxTokens),
	}
	if conv.System != "" {
		config.SystemInstruction = genai.NewContentFromText(conv.System, genai.RoleUser)
	}
	return contents, config
}
