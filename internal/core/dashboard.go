package core

import (
	"context"
	"strings"

	"mindtek-chatbot/pkg"
)

// Dashboard is the read model behind the operator dashboard: pagination
// and filtering over stored conversations.  It never writes.
type Dashboard struct {
	Store Store
}

// NewDashboard constructs a Dashboard.
func NewDashboard(store Store) *Dashboard { return &Dashboard{Store: store} }

// List returns one page of conversations, newest first, together with
// the pagination window.  Page defaults to 1 and pageSize to 10.
func (d *Dashboard) List(ctx context.Context, page, pageSize int) ([]pkg.Conversation, pkg.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if d.Store == nil {
		return nil, pkg.Pagination{}, ErrStoreUnavailable
	}
	rows, total, err := d.Store.List(ctx, page, pageSize)
	if err != nil {
		return nil, pkg.Pagination{}, err
	}
	totalPages := (total + pageSize - 1) / pageSize
	return rows, pkg.Pagination{
		CurrentPage:          page,
		TotalPages:           totalPages,
		TotalConversations:   total,
		ConversationsPerPage: pageSize,
		HasNextPage:          page < totalPages,
		HasPrevPage:          page > 1,
	}, nil
}

// Filter selects conversations by analysis fields.  Zero-valued fields
// match everything.
type Filter struct {
	Industry     string
	Consultation *bool
	LeadQuality  string
}

// FilterConversations applies f to rows: case-insensitive equality on
// industry, exact match on the consultation flag and lead quality.
func FilterConversations(rows []pkg.Conversation, f Filter) []pkg.Conversation {
	out := make([]pkg.Conversation, 0, len(rows))
	for _, c := range rows {
		if f.Industry != "" && !strings.EqualFold(strings.TrimSpace(c.Industry), strings.TrimSpace(f.Industry)) {
			continue
		}
		if f.Consultation != nil && c.Consultation != *f.Consultation {
			continue
		}
		if f.LeadQuality != "" && c.LeadQuality != f.LeadQuality {
			continue
		}
		out = append(out, c)
	}
	return out
}
