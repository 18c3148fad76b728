package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUnavailable is returned when the completion provider cannot be
// reached, rejects the request, or returns an empty result.  Callers
// classify completion failures with errors.Is.
var ErrUnavailable = errors.New("completion service unavailable")

// Message is a minimal chat message sent to the completion provider.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string
	Content string
}

// Options selects the model and sampling parameters for one completion
// call.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// Client is the narrow interface the engine and extractor need from a
// completion provider.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// OpenAIClient calls the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient constructs an OpenAI-backed client.  An empty API key
// is tolerated at construction time; calls will fail with ErrUnavailable
// so that misconfiguration surfaces per request rather than at startup.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	if apiKey == "" {
		return &OpenAIClient{}
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}
}

// Complete sends the message history to the chat completion API and
// returns the assistant's reply text.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrUnavailable)
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    oaMsgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
