// Package gemini provides a completion client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
)

const DefaultModel = "gemini-2.0-flash"

// generator is the slice of the genai Models service the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements interfaces.CompletionClient
type Client struct {
	models generator
	model  string
	logger *common.Logger
}

var _ interfaces.CompletionClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, interfaces.ErrNotConfigured
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newClient(genaiClient.Models, opts...), nil
}

func newClient(models generator, opts ...ClientOption) *Client {
	c := &Client{
		models: models,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends input under the given system instruction and returns the
// generated text. An empty completion is returned as "" with no error.
func (c *Client) Complete(ctx context.Context, systemInstruction, input string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("input_len", len(input)).Msg("Generating completion")

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
	result, err := c.models.GenerateContent(ctx, c.model, genai.Text(input), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return extractTextFromResponse(result), nil
}

// extractTextFromResponse concatenates the text parts of the first candidate.
func extractTextFromResponse(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
