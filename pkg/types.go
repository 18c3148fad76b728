package pkg

import "time"

// Role identifies the author of a turn.  The system role is only ever
// injected at completion time; it is never persisted as part of a
// stored transcript.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single message in a conversation.  Turns are immutable once
// appended and are stored in insertion order.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CustomerRecord holds the structured fields extracted from a transcript
// by the analysis step.  The JSON field names match both the extraction
// prompt and the database columns, so the same shape travels end to end.
type CustomerRecord struct {
	Name         string `json:"customer_name"`
	Email        string `json:"customer_email"`
	Phone        string `json:"customer_phone"`
	Industry     string `json:"customer_industry"`
	Problem      string `json:"customer_problem"`
	Availability string `json:"customer_availability"`
	Consultation bool   `json:"customer_consultation"`
	Notes        string `json:"special_notes"`
	LeadQuality  string `json:"lead_quality"`
}

// Lead quality values produced by the extraction prompt.
const (
	LeadGood = "good"
	LeadOK   = "ok"
	LeadSpam = "spam"
)

// Conversation is one stored conversation row: the transcript plus the
// analysis columns, which stay empty until an operator runs analysis.
// SessionID and Timestamp duplicate ConversationID and CreatedAt for
// dashboard compatibility.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	SessionID      string    `json:"sessionId"`
	Messages       []Turn    `json:"messages"`
	CreatedAt      time.Time `json:"created_at"`
	Timestamp      time.Time `json:"timestamp"`
	CustomerRecord
}

// Pagination describes one window of the conversation list.
type Pagination struct {
	CurrentPage          int  `json:"currentPage"`
	TotalPages           int  `json:"totalPages"`
	TotalConversations   int  `json:"totalConversations"`
	ConversationsPerPage int  `json:"conversationsPerPage"`
	HasNextPage          bool `json:"hasNextPage"`
	HasPrevPage          bool `json:"hasPrevPage"`
}

// ChatRequest is the body of a chat turn from the widget.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatResponse contains the assistant reply and the total number of
// turns now in the transcript.
type ChatResponse struct {
	Response     string `json:"response"`
	SessionID    string `json:"sessionId"`
	MessageCount int    `json:"messageCount"`
}
