package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// VertexGenerator wraps the Vertex AI Gemini client
type VertexGenerator struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewVertexGenerator creates a Vertex AI backed generator
func NewVertexGenerator(ctx context.Context, projectID, location, modelName string) (*VertexGenerator, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	// Low temperature keeps JSON output stable
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetMaxOutputTokens(8192)

	return &VertexGenerator{
		client:    client,
		model:     model,
		modelName: modelName,
	}, nil
}

// Generate sends the prompt and attachments and returns the text of the first candidate
func (g *VertexGenerator) Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error) {
	parts := make([]genai.Part, 0, len(attachments)+1)
	for _, a := range attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MIMEType, Data: a.Data})
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := extractVertexText(resp)
	if text == "" {
		return "", errors.New("no response from Gemini")
	}
	return text, nil
}

// Close closes the Gemini client
func (g *VertexGenerator) Close() error {
	return g.client.Close()
}

func extractVertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.TrimSpace(sb.String())
}
