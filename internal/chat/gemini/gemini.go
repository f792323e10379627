// Package gemini is implementation of chat.Answerer on top of Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/Decentr-net/citypulse/internal/chat"
)

var log = logrus.WithField("layer", "chat").WithField("package", "gemini")

// DefaultModel ...
const DefaultModel = "gemini-2.5-flash"

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type gemini struct {
	models generator
	model  string
}

// New creates Gemini client.
func New(ctx context.Context, apiKey, model string) (chat.Answerer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newWithGenerator(client.Models, model), nil
}

func newWithGenerator(g generator, model string) chat.Answerer {
	if model == "" {
		model = DefaultModel
	}

	return gemini{
		models: g,
		model:  model,
	}
}

// Answer returns first candidate's text or chat.Fallback when there is none.
func (g gemini) Answer(ctx context.Context, prompt string) (string, error) {
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		log.WithField("model", g.model).Warn("no candidates returned")
		return chat.Fallback, nil
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return chat.Fallback, nil
	}

	return text, nil
}
