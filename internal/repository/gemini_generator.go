package repository

import (
	"context"
	"fmt"
	"strings"

	"scentwise-server/internal/domain"

	"cloud.google.com/go/vertexai/genai"
)

const (
	geminiTemperature     = 0.8
	geminiMaxOutputTokens = 1500
)

// GeminiGenerator implements domain.TextGenerator on Vertex AI.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger domain.Logger
}

// NewGeminiGenerator opens a Vertex AI client using application default credentials.
func NewGeminiGenerator(ctx context.Context, projectID, location, model string, logger domain.Logger) (*GeminiGenerator, error) {
	if projectID == "" {
		return nil, domain.ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, logger: logger}, nil
}

// Generate sends the prompt, with the image first when present, and joins the text
// parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt *domain.Prompt) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(geminiTemperature)
	model.SetMaxOutputTokens(geminiMaxOutputTokens)

	parts := make([]genai.Part, 0, 2)
	if prompt.HasImage() {
		parts = append(parts, genai.Blob{MIMEType: prompt.ImageMIME, Data: prompt.Image})
	}
	parts = append(parts, genai.Text(prompt.Text))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrEmptyGeneration
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", domain.ErrEmptyGeneration
	}

	if resp.UsageMetadata != nil {
		g.logger.Debug("Gemini generation finished", "model", g.model, "tokens", resp.UsageMetadata.TotalTokenCount)
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
