package visualizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/expense-insights/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ChatModel answers a user message under a system prompt.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// GeminiModel is a ChatModel backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger logging.Logger
}

// NewGeminiModel creates a Gemini client for the named model.
func NewGeminiModel(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiModel{
		client: client,
		model:  client.GenerativeModel(modelName),
		name:   modelName,
		logger: logger,
	}, nil
}

// Complete sends the system prompt and the user message as one request and
// returns the concatenated text of the first candidate.
func (g *GeminiModel) Complete(ctx context.Context, system, user string) (string, error) {
	g.logger.Debug("Sending prompt to Gemini",
		logging.F("model", g.name),
		logging.F("prompt_length", len(system)+len(user)))

	resp, err := g.model.GenerateContent(ctx, genai.Text(system), genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini API")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text")
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (g *GeminiModel) Close() error {
	return g.client.Close()
}
