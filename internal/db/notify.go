package db

import (
	"context"
	"database/sql"
)

// Notifier wraps Postgres NOTIFY.  A notification is sent on the
// configured channel whenever a conversation's analysis is updated, so
// operator dashboards can LISTEN instead of polling.
type Notifier struct {
	DB      *sql.DB
	Channel string
}

// NewNotifier constructs a Notifier.  The channel should match the
// NOTIFY_CHANNEL environment variable used by listeners.
func NewNotifier(db *sql.DB, channel string) *Notifier {
	return &Notifier{DB: db, Channel: channel}
}

// Notify announces that the given conversation's analysis changed.  The
// conversation ID is the notification payload.
func (n *Notifier) Notify(ctx context.Context, conversationID string) error {
	_, err := n.DB.ExecContext(ctx,
		`SELECT pg_notify($1, $2)`, n.Channel, conversationID)
	return err
}
