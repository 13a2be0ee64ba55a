package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var ErrEmptyResponse = errors.New("gemini returned no text")

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	const op = "gemini.NewClient"

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Generate concatenates the text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gemini.Client.Generate"

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
