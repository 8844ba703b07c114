package caption

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/socialreel/enhance-worker/internal/stage"
)

// Model abstracts the generative backend so the engine can be exercised
// without network access.
type Model interface {
	// Generate sends the parts as a single user turn and returns the
	// response text.
	Generate(ctx context.Context, parts []*genai.Part) (string, error)
}

// GeminiModel calls the Gemini API through the official client.
type GeminiModel struct {
	client    *genai.Client
	modelName string
}

// NewGeminiModel wraps an initialized genai client. modelName selects the
// Gemini model ID, e.g. "gemini-2.5-flash".
func NewGeminiModel(client *genai.Client, modelName string) *GeminiModel {
	return &GeminiModel{client: client, modelName: modelName}
}

func (m *GeminiModel) Generate(ctx context.Context, parts []*genai.Part) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := m.client.Models.GenerateContent(ctx, m.modelName, contents, config)
	if err != nil {
		return "", stage.Errorf(stage.KindService, "gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", stage.NewError(stage.KindService, fmt.Errorf("gemini returned empty response"))
	}
	return text, nil
}
