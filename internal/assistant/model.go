// Package assistant relays chat turns to a hosted language model and applies
// the state changes it asks for.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/streamos/internal/domain/chat"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey indicates the assistant is not configured.
var ErrNoAPIKey = errors.New("assistant api key is required")

// Model generates one reply given a system instruction, prior turns and a
// new user message.
type Model interface {
	Generate(ctx context.Context, system string, history []chat.Message, prompt string) (string, error)
}

// GeminiModel calls the Gemini API through the genai SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a client for the Gemini API.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Generate implements Model.
func (m *GeminiModel) Generate(ctx context.Context, system string, history []chat.Message, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		role := genai.Role(genai.RoleUser)
		if msg.Role == chat.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
