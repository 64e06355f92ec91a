package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Gemini is a Model backed by Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	log    *zap.Logger
}

// NewGemini creates a client for the named model. Temperature is pinned to 0
// so the same question tends to produce the same SQL.
func NewGemini(ctx context.Context, apiKey, modelName string, log *zap.Logger) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	log.Info("gemini model ready", zap.String("model", modelName))
	return &Gemini{client: client, model: model, name: modelName, log: log}, nil
}

// Generate sends prompt as a single user turn and concatenates the text parts
// of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.name, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	if resp.UsageMetadata != nil {
		g.log.Debug("gemini usage",
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("response_tokens", resp.UsageMetadata.CandidatesTokenCount),
		)
	}
	return text, nil
}

// Close releases the underlying gRPC connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
