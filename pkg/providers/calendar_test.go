package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loopmsg/wabridge/pkg/types"
)

func testCalendarClient(serverURL string) *CalendarClient {
	c := NewCalendarClient(types.CalendarConfig{})
	c.apiBase = serverURL
	c.now = func() time.Time {
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	return c
}

func TestNormalizeCalendarEvent_TimedEvent(t *testing.T) {
	raw := map[string]any{
		"id":       "evt-1",
		"summary":  "Standup",
		"location": "Room 4",
		"status":   "confirmed",
		"start":    map[string]any{"dateTime": "2024-03-01T09:00:00Z"},
		"end":      map[string]any{"dateTime": "2024-03-01T09:30:00Z"},
		"attendees": []any{
			map[string]any{"email": "a@example.com", "displayName": "A", "responseStatus": "accepted"},
		},
		"organizer": map[string]any{"email": "boss@example.com", "self": true},
	}

	event := NormalizeCalendarEvent(raw, "primary")

	if event.Id != "evt-1" || event.Title != "Standup" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.IsAllDay {
		t.Error("event with a dateTime start should not be all-day")
	}
	if event.Start != "2024-03-01T09:00:00Z" || event.End != "2024-03-01T09:30:00Z" {
		t.Errorf("unexpected times: %q / %q", event.Start, event.End)
	}
	if len(event.Attendees) != 1 || event.Attendees[0].Email != "a@example.com" {
		t.Errorf("unexpected attendees: %+v", event.Attendees)
	}
	if event.Organizer == nil || !event.Organizer.Self {
		t.Errorf("unexpected organizer: %+v", event.Organizer)
	}
	if event.CalendarId != "primary" {
		t.Errorf("unexpected calendarId: %q", event.CalendarId)
	}
}

func TestNormalizeCalendarEvent_AllDayEvent(t *testing.T) {
	raw := map[string]any{
		"id":    "evt-2",
		"start": map[string]any{"date": "2024-03-05"},
		"end":   map[string]any{"date": "2024-03-06"},
	}

	event := NormalizeCalendarEvent(raw, "primary")

	if !event.IsAllDay {
		t.Error("date-only event should be all-day")
	}
	if event.Start != "2024-03-05" {
		t.Errorf("unexpected start: %q", event.Start)
	}
	if event.Attendees == nil {
		t.Error("attendees should default to an empty slice, not nil")
	}
	if event.Organizer != nil {
		t.Errorf("organizer should stay nil when absent, got %+v", event.Organizer)
	}
}

func TestSortAndGroupEvents(t *testing.T) {
	events := []types.CalendarEvent{
		{Id: "c", Start: "2024-03-02T10:00:00Z"},
		{Id: "a", Start: "2024-03-01T09:00:00Z"},
		{Id: "b", Start: "2024-03-01T15:00:00Z"},
	}

	SortEventsByStart(events)

	if events[0].Id != "a" || events[1].Id != "b" || events[2].Id != "c" {
		t.Errorf("unexpected sort order: %s %s %s", events[0].Id, events[1].Id, events[2].Id)
	}

	grouped := GroupEventsByDate(events)

	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	if grouped[0].Date != "2024-03-01" || grouped[1].Date != "2024-03-02" {
		t.Errorf("unexpected group order: %s, %s", grouped[0].Date, grouped[1].Date)
	}
	if len(grouped[0].Events) != 2 || grouped[0].Events[0].Id != "a" || grouped[0].Events[1].Id != "b" {
		t.Errorf("unexpected first group: %+v", grouped[0].Events)
	}
}

func TestGroupEventsByDate_SkipsUnparseableStart(t *testing.T) {
	grouped := GroupEventsByDate([]types.CalendarEvent{
		{Id: "x", Start: ""},
		{Id: "y", Start: "2024-03-01"},
	})

	if len(grouped) != 1 || grouped[0].Date != "2024-03-01" {
		t.Errorf("expected one group for the parseable event, got %+v", grouped)
	}
}

func TestListEvents_DegradesOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testCalendarClient(server.URL)
	events, err := client.ListEvents(context.Background(), "token")
	if err != nil {
		t.Fatalf("expected graceful degradation, got error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty event set, got %d events", len(events))
	}
}

func TestListEvents_AuthExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testCalendarClient(server.URL)
	_, err := client.ListEvents(context.Background(), "token")
	if !errors.Is(err, types.ErrAuthExpired) {
		t.Errorf("expected ErrAuthExpired, got %v", err)
	}
}

func TestListCalendars_FailsOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testCalendarClient(server.URL)
	_, err := client.ListCalendars(context.Background(), "token")
	if !errors.Is(err, types.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestListEvents_QueryWindow(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := testCalendarClient(server.URL)
	if _, err := client.ListEvents(context.Background(), "token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := gotQuery["timeMin"]; len(got) != 1 || got[0] != "2024-03-01T00:00:00Z" {
		t.Errorf("unexpected timeMin: %v", got)
	}
	if got := gotQuery["singleEvents"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("unexpected singleEvents: %v", got)
	}
	if got := gotQuery["orderBy"]; len(got) != 1 || got[0] != "startTime" {
		t.Errorf("unexpected orderBy: %v", got)
	}
}
