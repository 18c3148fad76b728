package core

import (
	"context"

	"mindtek-chatbot/pkg"
)

// Store is the narrow interface over the persistence service.  Missing
// rows are reported as ErrNotFound; anything else is treated as a store
// failure by the callers.
type Store interface {
	// GetMessages returns the stored transcript for a conversation.
	GetMessages(ctx context.Context, conversationID string) ([]pkg.Turn, error)
	// UpsertMessages replaces the full transcript for a conversation,
	// creating the row on first write.
	UpsertMessages(ctx context.Context, conversationID string, messages []pkg.Turn) error
	// Delete removes a conversation.  Deleting an absent conversation
	// is not an error.
	Delete(ctx context.Context, conversationID string) error
	// Get returns the full row including any analysis columns.
	Get(ctx context.Context, conversationID string) (*pkg.Conversation, error)
	// List returns one page of conversations ordered newest first,
	// plus the total row count.
	List(ctx context.Context, page, pageSize int) ([]pkg.Conversation, int, error)
	// UpdateAnalysis overwrites the analysis columns of a conversation.
	UpdateAnalysis(ctx context.Context, conversationID string, rec pkg.CustomerRecord) error
}

// Notifier announces that a conversation's analysis was updated, so
// operator dashboards can react.  Implementations must be best-effort;
// callers log and ignore failures.
type Notifier interface {
	Notify(ctx context.Context, conversationID string) error
}
