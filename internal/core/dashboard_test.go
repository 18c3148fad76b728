package core

import (
	"context"
	"fmt"
	"testing"

	"mindtek-chatbot/pkg"
)

func seedConversations(store *fakeStore, n int) {
	for i := 0; i < n; i++ {
		store.seed(fmt.Sprintf("s%02d", i), []pkg.Turn{userTurn("Hi")})
	}
}

func TestDashboardListPagination(t *testing.T) {
	store := newFakeStore()
	seedConversations(store, 25)
	d := NewDashboard(store)

	rows, window, err := d.List(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("page 2 should hold 10 rows, got %d", len(rows))
	}
	if window.TotalPages != 3 || window.TotalConversations != 25 {
		t.Fatalf("unexpected window: %+v", window)
	}
	if !window.HasNextPage || !window.HasPrevPage {
		t.Fatalf("page 2 of 3 has both neighbours: %+v", window)
	}

	rows, window, err = d.List(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("last page should hold the 5 remaining rows, got %d", len(rows))
	}
	if window.HasNextPage || !window.HasPrevPage {
		t.Fatalf("unexpected window on last page: %+v", window)
	}
}

func TestDashboardListNewestFirst(t *testing.T) {
	store := newFakeStore()
	seedConversations(store, 3)
	d := NewDashboard(store)

	rows, _, err := d.List(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].CreatedAt.After(rows[i-1].CreatedAt) {
			t.Fatalf("rows must be ordered newest first")
		}
	}
}

func TestDashboardListDefaults(t *testing.T) {
	store := newFakeStore()
	seedConversations(store, 12)
	d := NewDashboard(store)

	rows, window, err := d.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if window.CurrentPage != 1 || window.ConversationsPerPage != 10 {
		t.Fatalf("expected defaults page=1 size=10, got %+v", window)
	}
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
}

func TestDashboardListWithoutStore(t *testing.T) {
	d := NewDashboard(nil)
	if _, _, err := d.List(context.Background(), 1, 10); err == nil {
		t.Fatalf("expected an error without a store")
	}
}

func boolPtr(b bool) *bool { return &b }

func TestFilterConversations(t *testing.T) {
	rows := []pkg.Conversation{
		{ConversationID: "a", CustomerRecord: pkg.CustomerRecord{Industry: "Real Estate", Consultation: true, LeadQuality: pkg.LeadGood}},
		{ConversationID: "b", CustomerRecord: pkg.CustomerRecord{Industry: "real estate", Consultation: false, LeadQuality: pkg.LeadSpam}},
		{ConversationID: "c", CustomerRecord: pkg.CustomerRecord{Industry: "Education", Consultation: true, LeadQuality: pkg.LeadOK}},
		{ConversationID: "d"},
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"a", "b", "c", "d"}},
		{"industry is case-insensitive", Filter{Industry: "REAL ESTATE"}, []string{"a", "b"}},
		{"consultation true", Filter{Consultation: boolPtr(true)}, []string{"a", "c"}},
		{"consultation false", Filter{Consultation: boolPtr(false)}, []string{"b", "d"}},
		{"lead quality", Filter{LeadQuality: pkg.LeadSpam}, []string{"b"}},
		{"combined", Filter{Industry: "real estate", Consultation: boolPtr(true)}, []string{"a"}},
		{"no match", Filter{Industry: "Mining"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterConversations(rows, tc.filter)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d rows, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ConversationID != id {
					t.Fatalf("row %d = %q, want %q", i, got[i].ConversationID, id)
				}
			}
		})
	}
}
