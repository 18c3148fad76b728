package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mindtek-chatbot/internal/llm"
	"mindtek-chatbot/pkg"
)

// EngineOptions configures the chat completion call and the store
// failure policy.
type EngineOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout bounds a single completion call.  Expiry surfaces as a
	// completion failure.
	Timeout time.Duration
	// StoreOptional selects the degraded mode: when true, store read
	// and write failures are logged and the turn proceeds without
	// history; when false they fail the request with ErrStoreUnavailable.
	StoreOptional bool
}

// Engine runs one chat turn: load history, call the completion service
// with the persona prompt prepended, persist the extended transcript.
type Engine struct {
	Store Store
	LLM   llm.Client
	Opts  EngineOptions
}

// NewEngine constructs an Engine, filling in defaults for any zero
// option values.
func NewEngine(store Store, client llm.Client, opts EngineOptions) *Engine {
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1000
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Engine{Store: store, LLM: client, Opts: opts}
}

// HandleTurn appends the user's message to the conversation, obtains the
// assistant reply and returns it together with the updated transcript.
// Two concurrent turns for the same conversation are not coordinated;
// the store write is last-write-wins, which is acceptable for a single
// user typing sequentially.
func (e *Engine) HandleTurn(ctx context.Context, conversationID, userText string) (string, []pkg.Turn, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", nil, fmt.Errorf("%w: session ID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(userText) == "" {
		return "", nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	history, err := e.loadHistory(ctx, conversationID)
	if err != nil {
		return "", nil, err
	}

	history = append(history, pkg.Turn{
		Role:      pkg.RoleUser,
		Content:   userText,
		Timestamp: time.Now().UTC(),
	})

	// Persona prompt first, then the transcript with timestamps
	// stripped.  Stored transcripts never contain system turns, but the
	// guard keeps a hand-edited row from smuggling in instructions.
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: string(pkg.RoleSystem), Content: PersonaPrompt})
	for _, t := range history {
		if t.Role == pkg.RoleSystem {
			continue
		}
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: t.Content})
	}

	cctx, cancel := context.WithTimeout(ctx, e.Opts.Timeout)
	defer cancel()
	reply, err := e.LLM.Complete(cctx, msgs, llm.Options{
		Model:       e.Opts.Model,
		MaxTokens:   e.Opts.MaxTokens,
		Temperature: e.Opts.Temperature,
	})
	if err != nil {
		return "", nil, err
	}

	history = append(history, pkg.Turn{
		Role:      pkg.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})

	if err := e.saveHistory(ctx, conversationID, history); err != nil {
		return "", nil, err
	}
	return reply, history, nil
}

// loadHistory fetches the stored transcript, applying the StoreOptional
// policy.  A missing row is always just an empty history.
func (e *Engine) loadHistory(ctx context.Context, conversationID string) ([]pkg.Turn, error) {
	if e.Store == nil {
		return nil, nil
	}
	history, err := e.Store.GetMessages(ctx, conversationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if !e.Opts.StoreOptional {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		log.Printf("chat %s: degrading to empty history, store read failed: %v", conversationID, err)
		return nil, nil
	}
	return history, nil
}

func (e *Engine) saveHistory(ctx context.Context, conversationID string, history []pkg.Turn) error {
	if e.Store == nil {
		return nil
	}
	if err := e.Store.UpsertMessages(ctx, conversationID, history); err != nil {
		if !e.Opts.StoreOptional {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		log.Printf("chat %s: store write failed, transcript not persisted: %v", conversationID, err)
	}
	return nil
}
