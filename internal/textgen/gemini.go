package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewrelay/review-relay/config"
	"google.golang.org/genai"
)

// GeminiGenerator generates review text via the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator backed by the configured Gemini model
func NewGeminiGenerator(ctx context.Context, cfg *config.GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  cfg.Model,
	}, nil
}

// GenerateReview builds the prompt from input and returns the generated text
func (g *GeminiGenerator) GenerateReview(ctx context.Context, input ReviewPrompt) (string, error) {
	prompt := BuildPrompt(input)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	review := strings.TrimSpace(resp.Text())
	if review == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return review, nil
}
