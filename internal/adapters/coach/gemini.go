package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini model defaults.
const (
	DefaultModel       = "gemini-2.5-flash"
	defaultTemperature = 0.7
	defaultTopP        = 0.9
	defaultMaxTokens   = 1024
)

type geminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGemini creates a Coach backed by Google Gemini.
func NewGemini(ctx context.Context, apiKey, modelName string, opts ...Option) (*Coach, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemInstruction))
	model.SetTemperature(defaultTemperature)
	model.SetTopP(defaultTopP)
	model.SetMaxOutputTokens(defaultMaxTokens)

	c := newCoach(&geminiGenerator{model: model}, opts...)
	c.closer = client.Close
	return c, nil
}

func (g *geminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrNoContent
	}
	return b.String(), nil
}
