package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mindtek-chatbot/internal/core"
	"mindtek-chatbot/pkg"

	"github.com/google/uuid"
)

// Repository implements core.Store over a Postgres database.  The caller
// is responsible for managing the DB connection lifecycle.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// GetMessages returns the stored transcript for a conversation.
func (r *Repository) GetMessages(ctx context.Context, conversationID string) ([]pkg.Turn, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT messages FROM conversations WHERE conversation_id = $1`,
		conversationID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, conversationID)
		}
		return nil, err
	}
	return decodeMessages(raw)
}

// UpsertMessages replaces the full transcript for a conversation,
// creating the row on first write.  The analysis columns are untouched.
func (r *Repository) UpsertMessages(ctx context.Context, conversationID string, messages []pkg.Turn) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO conversations (conversation_id, id, messages)
         VALUES ($1, $2, $3)
         ON CONFLICT (conversation_id) DO UPDATE SET messages = EXCLUDED.messages`,
		conversationID, uuid.New(), raw,
	)
	return err
}

// Delete removes a conversation.  Deleting an absent row succeeds.
func (r *Repository) Delete(ctx context.Context, conversationID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM conversations WHERE conversation_id = $1`, conversationID)
	return err
}

const conversationColumns = `conversation_id, messages, created_at,
        COALESCE(customer_name, ''), COALESCE(customer_email, ''),
        COALESCE(customer_phone, ''), COALESCE(customer_industry, ''),
        COALESCE(customer_problem, ''), COALESCE(customer_availability, ''),
        COALESCE(customer_consultation, FALSE), COALESCE(special_notes, ''),
        COALESCE(lead_quality, '')`

// Get returns the full row for a conversation, analysis columns included.
func (r *Repository) Get(ctx context.Context, conversationID string) (*pkg.Conversation, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE conversation_id = $1`,
		conversationID)
	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, conversationID)
		}
		return nil, err
	}
	return conv, nil
}

// List returns one page of conversations ordered newest first, plus the
// total row count.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]pkg.Conversation, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+conversationColumns+`
         FROM conversations
         ORDER BY created_at DESC
         LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]pkg.Conversation, 0, pageSize)
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *conv)
	}
	return out, total, rows.Err()
}

// UpdateAnalysis overwrites the nine analysis columns of a conversation.
func (r *Repository) UpdateAnalysis(ctx context.Context, conversationID string, rec pkg.CustomerRecord) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE conversations SET
            customer_name = $1, customer_email = $2, customer_phone = $3,
            customer_industry = $4, customer_problem = $5,
            customer_availability = $6, customer_consultation = $7,
            special_notes = $8, lead_quality = $9
         WHERE conversation_id = $10`,
		rec.Name, rec.Email, rec.Phone, rec.Industry, rec.Problem,
		rec.Availability, rec.Consultation, rec.Notes, rec.LeadQuality,
		conversationID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrNotFound, conversationID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(s scanner) (*pkg.Conversation, error) {
	var c pkg.Conversation
	var raw []byte
	err := s.Scan(&c.ConversationID, &raw, &c.CreatedAt,
		&c.Name, &c.Email, &c.Phone, &c.Industry, &c.Problem,
		&c.Availability, &c.Consultation, &c.Notes, &c.LeadQuality)
	if err != nil {
		return nil, err
	}
	msgs, err := decodeMessages(raw)
	if err != nil {
		return nil, err
	}
	c.Messages = msgs
	// compatibility aliases used by the dashboard frontend
	c.SessionID = c.ConversationID
	c.Timestamp = c.CreatedAt
	return &c, nil
}

func decodeMessages(raw []byte) ([]pkg.Turn, error) {
	if len(raw) == 0 {
		return []pkg.Turn{}, nil
	}
	var msgs []pkg.Turn
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if msgs == nil {
		msgs = []pkg.Turn{}
	}
	return msgs, nil
}
