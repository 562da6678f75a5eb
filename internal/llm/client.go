package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"skillmatch/internal/cleaner"
	pkgerrors "skillmatch/pkg/errors"
	"skillmatch/pkg/types"
)

var clean = cleaner.NewCleaner()

// Completer is the single capability every pipeline stage needs from the
// completion backend. One request per call; no retries, no timeouts beyond
// what the context carries.
type Completer interface {
	Complete(ctx context.Context, prompt string, history []types.ChatMessage, systemPrompt string) (string, error)
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Complete sends one request built from the prior conversation plus the
// current prompt. There is no separate system-role channel: a non-empty
// systemPrompt is textually merged into the final user turn. An empty model
// reply is a valid (if useless) success, not an error; transport failures
// come back as *errors.TransportError.
func (c *Client) Complete(ctx context.Context, prompt string, history []types.ChatMessage, systemPrompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	session := model.StartChat()

	for _, msg := range history {
		role := "model"
		if msg.IsUser {
			role = "user"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}

	combined := prompt
	if systemPrompt != "" {
		combined = strings.TrimSpace(systemPrompt) + "\n\nUser message:\n" + prompt
	}

	resp, err := session.SendMessage(ctx, genai.Text(combined))
	if err != nil {
		return "", &pkgerrors.TransportError{Err: err}
	}

	if resp.UsageMetadata != nil {
		slog.Info("LLM API call",
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens", resp.UsageMetadata.TotalTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", nil
	}

	return string(text), nil
}
