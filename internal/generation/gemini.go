// Package generation wraps the external text-generation capability behind a
// single blocking call.
package generation

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Generator produces a document from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const defaultModel = "gemini-2.5-flash"

// Gemini implements Generator against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends one prompt and returns the completion text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("no completion returned")
	}
	return text, nil
}
