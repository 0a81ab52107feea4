package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Move37LLC/consciousness-gateway-sub000/internal/action"
	"github.com/Move37LLC/consciousness-gateway-sub000/internal/intention"
)

// #region client

// Client implements action.Generator against the Google GenAI API. It is an
// external collaborator: the core runs fine without it (stubbed results).
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a generation client. model defaults to gemini-2.0-flash.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("generation: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("generation: create client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

// #endregion client

// #region generate

// Generate renders a respond/create intention into text.
func (c *Client) Generate(ctx context.Context, in intention.Intention) (action.Generation, error) {
	prompt := buildPrompt(in)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return action.Generation{}, fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return action.Generation{}, fmt.Errorf("generate content: empty response")
	}
	return action.Generation{
		Content:     text,
		SideEffects: []string{"generated:" + string(in.Action.Type)},
	}, nil
}

func buildPrompt(in intention.Intention) string {
	return fmt.Sprintf(
		"You are acting on an authorized intention.\nGoal: %s\nAction: %s %s\nIntent: %s\nProduce the content that fulfills this intent, nothing else.",
		in.Goal, in.Action.Type, in.Action.Target, in.Action.Description,
	)
}

// #endregion generate
