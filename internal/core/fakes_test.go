package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mindtek-chatbot/internal/llm"
	"mindtek-chatbot/pkg"
)

// fakeStore is an in-memory core.Store with switchable failures.
type fakeStore struct {
	rows map[string]*pkg.Conversation

	getErr    error
	upsertErr error
	updateErr error
	listErr   error

	getCalls    int
	upsertCalls int
	updateCalls int

	clock time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:  make(map[string]*pkg.Conversation),
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) seed(id string, turns []pkg.Turn) *pkg.Conversation {
	f.clock = f.clock.Add(time.Minute)
	row := &pkg.Conversation{
		ConversationID: id,
		SessionID:      id,
		Messages:       turns,
		CreatedAt:      f.clock,
		Timestamp:      f.clock,
	}
	f.rows[id] = row
	return row
}

func (f *fakeStore) GetMessages(ctx context.Context, id string) ([]pkg.Turn, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return append([]pkg.Turn(nil), row.Messages...), nil
}

func (f *fakeStore) UpsertMessages(ctx context.Context, id string, messages []pkg.Turn) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	row, ok := f.rows[id]
	if !ok {
		row = f.seed(id, nil)
	}
	row.Messages = append([]pkg.Turn(nil), messages...)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*pkg.Conversation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *row
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, page, pageSize int) ([]pkg.Conversation, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	all := make([]pkg.Conversation, 0, len(f.rows))
	for _, row := range f.rows {
		all = append(all, *row)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []pkg.Conversation{}, len(all), nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (f *fakeStore) UpdateAnalysis(ctx context.Context, id string, rec pkg.CustomerRecord) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	row, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	row.CustomerRecord = rec
	return nil
}

// fakeLLM records the last completion request and returns a canned reply.
type fakeLLM struct {
	reply string
	err   error

	calls       int
	gotMessages []llm.Message
	gotOpts     llm.Options
}

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	f.calls++
	f.gotMessages = append([]llm.Message(nil), messages...)
	f.gotOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeNotifier struct {
	notified []string
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, conversationID string) error {
	f.notified = append(f.notified, conversationID)
	return f.err
}

func userTurn(content string) pkg.Turn {
	return pkg.Turn{Role: pkg.RoleUser, Content: content, Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func assistantTurn(content string) pkg.Turn {
	return pkg.Turn{Role: pkg.RoleAssistant, Content: content, Timestamp: time.Date(2025, 6, 1, 10, 1, 0, 0, time.UTC)}
}
