package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const systemPrompt = `És um assistente de uma comunidade de confrarias gastronómicas portuguesas.
Dado o texto de uma publicação, sugere até 5 etiquetas curtas, em português, sem o símbolo #.
Responde apenas com JSON no formato {"tags": ["..."]}.`

// tagsSchema constrains the model output to {"tags": [string]}.
var tagsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tags": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"tags"},
}

// GeminiGenerator asks Gemini for a JSON tag list.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, content string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(content), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    tagsSchema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return resp.Text(), nil
}
