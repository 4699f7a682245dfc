package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// APIKeyGenerator wraps the Google GenAI client on the Gemini API backend
type APIKeyGenerator struct {
	client    *genai.Client
	modelName string
}

// NewAPIKeyGenerator creates a generator authenticated with a Gemini API key
func NewAPIKeyGenerator(ctx context.Context, apiKey, model string) (*APIKeyGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &APIKeyGenerator{client: client, modelName: model}, nil
}

func newAPIKeyGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	return NewAPIKeyGenerator(ctx, apiKey, model)
}

// Generate sends the prompt and attachments and joins the textual parts of the response
func (g *APIKeyGenerator) Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	parts := make([]*genai.Part, 0, len(attachments)+1)
	for _, a := range attachments {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: a.MIMEType, Data: a.Data}})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.2)}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Close is a no-op; the GenAI client holds no closable resources
func (g *APIKeyGenerator) Close() error {
	return nil
}
