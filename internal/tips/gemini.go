package tips

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
	// Endpoint overrides the API base URL, for tests.
	Endpoint string
}

type geminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Generator backed by the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &geminiClient{client: client, model: model}, nil
}

// tipsSchema constrains the response to {"tips":[{"title","description"}]}.
func tipsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tips": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString, Description: "O título da dica."},
						"description": {Type: genai.TypeString, Description: "A descrição detalhada da dica."},
					},
					Required: []string{"title", "description"},
				},
			},
		},
		Required: []string{"tips"},
	}
}

func (c *geminiClient) Generate(ctx context.Context, req Request) ([]Tip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(BuildPrompt(req)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    tipsSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrNoTips
	}
	return parseTips(text)
}
