package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loopmsg/wabridge/pkg/types"
)

const calendarAPIBase = "https://www.googleapis.com/calendar/v3"

const (
	defaultCalendarMaxResults = 50
	defaultCalendarLookAhead  = 30 * 24 * time.Hour
	defaultCalendarID         = "primary"
)

// CalendarClient issues authenticated calls to the Google Calendar REST API
type CalendarClient struct {
	apiBase    string
	maxResults int
	lookAhead  time.Duration
	calendarID string
	httpClient *http.Client
	now        func() time.Time
}

// NewCalendarClient creates a Calendar client from config
func NewCalendarClient(cfg types.CalendarConfig) *CalendarClient {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultCalendarMaxResults
	}
	lookAhead := cfg.LookAhead
	if lookAhead <= 0 {
		lookAhead = defaultCalendarLookAhead
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = defaultCalendarID
	}

	return &CalendarClient{
		apiBase:    calendarAPIBase,
		maxResults: maxResults,
		lookAhead:  lookAhead,
		calendarID: calendarID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (c *CalendarClient) get(ctx context.Context, token, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, types.ErrAuthExpired
	}
	return resp, nil
}

// ListCalendars returns the user's calendar list. Unlike the events fetch,
// a failure here fails the whole request.
func (c *CalendarClient) ListCalendars(ctx context.Context, token string) ([]types.CalendarSummary, error) {
	resp, err := c.get(ctx, token, "/users/me/calendarList")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Error().Int("status", resp.StatusCode).Bytes("body", body).Msg("calendar list API error")
		return nil, fmt.Errorf("calendar list status %d: %w", resp.StatusCode, types.ErrUpstream)
	}

	var result struct {
		Items []struct {
			Id              string `json:"id"`
			Summary         string `json:"summary"`
			Primary         bool   `json:"primary"`
			BackgroundColor string `json:"backgroundColor"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	calendars := make([]types.CalendarSummary, 0, len(result.Items))
	for _, item := range result.Items {
		calendars = append(calendars, types.CalendarSummary{
			Id:              item.Id,
			Summary:         item.Summary,
			Primary:         item.Primary,
			BackgroundColor: item.BackgroundColor,
		})
	}
	return calendars, nil
}

// ListEvents fetches upcoming events from the configured calendar. A non-2xx
// response degrades to an empty event set instead of failing the request.
// Only the configured calendar (default: primary) is queried even though
// the calendar list may contain more.
func (c *CalendarClient) ListEvents(ctx context.Context, token string) ([]types.CalendarEvent, error) {
	now := c.now().UTC()

	query := url.Values{
		"timeMin":      {now.Format(time.RFC3339)},
		"timeMax":      {now.Add(c.lookAhead).Format(time.RFC3339)},
		"maxResults":   {fmt.Sprintf("%d", c.maxResults)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	path := fmt.Sprintf("/calendars/%s/events?%s", url.PathEscape(c.calendarID), query.Encode())

	resp, err := c.get(ctx, token, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Warn().Int("status", resp.StatusCode).Bytes("body", body).Msg("calendar events API error, returning empty set")
		return []types.CalendarEvent{}, nil
	}

	var result struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	events := make([]types.CalendarEvent, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, NormalizeCalendarEvent(item, c.calendarID))
	}

	SortEventsByStart(events)
	return events, nil
}

// NormalizeCalendarEvent converts a raw provider event into the stable
// shape, defaulting every optional field
func NormalizeCalendarEvent(raw map[string]any, calendarID string) types.CalendarEvent {
	event := types.CalendarEvent{
		Id:               getString(raw, "id"),
		Title:            getString(raw, "summary"),
		Description:      getString(raw, "description"),
		Location:         getString(raw, "location"),
		Status:           getString(raw, "status"),
		HtmlLink:         getString(raw, "htmlLink"),
		Attendees:        []types.EventAttendee{},
		CalendarId:       calendarID,
		ColorId:          getString(raw, "colorId"),
		RecurringEventId: getString(raw, "recurringEventId"),
		Created:          getString(raw, "created"),
		Updated:          getString(raw, "updated"),
	}

	if start, ok := raw["start"].(map[string]any); ok {
		// All-day events carry only a date, never a time of day
		event.IsAllDay = getString(start, "dateTime") == ""
		event.Start = eventTimestamp(start)
	}
	if end, ok := raw["end"].(map[string]any); ok {
		event.End = eventTimestamp(end)
	}

	if attendees, ok := raw["attendees"].([]any); ok {
		for _, a := range attendees {
			attendee, ok := a.(map[string]any)
			if !ok {
				continue
			}
			event.Attendees = append(event.Attendees, types.EventAttendee{
				Email:          getString(attendee, "email"),
				Name:           getString(attendee, "displayName"),
				ResponseStatus: getString(attendee, "responseStatus"),
			})
		}
	}

	if organizer, ok := raw["organizer"].(map[string]any); ok {
		event.Organizer = &types.EventOrganizer{
			Email: getString(organizer, "email"),
			Name:  getString(organizer, "displayName"),
			Self:  getBool(organizer, "self"),
		}
	}

	return event
}

// SortEventsByStart sorts events ascending by parsed start time
func SortEventsByStart(events []types.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return parseEventTime(events[i].Start).Before(parseEventTime(events[j].Start))
	})
}

// GroupEventsByDate groups sorted events by the UTC date of their start,
// preserving the ascending order within and across groups
func GroupEventsByDate(events []types.CalendarEvent) types.GroupedEvents {
	grouped := types.GroupedEvents{}
	index := map[string]int{}

	for _, event := range events {
		key := eventDateKey(event.Start)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(grouped)
			index[key] = i
			grouped = append(grouped, types.EventGroup{Date: key})
		}
		grouped[i].Events = append(grouped[i].Events, event)
	}

	return grouped
}

// eventTimestamp prefers dateTime, then date, then empty string
func eventTimestamp(field map[string]any) string {
	if dt := getString(field, "dateTime"); dt != "" {
		return dt
	}
	return getString(field, "date")
}

func parseEventTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t
	}
	return time.Time{}
}

func eventDateKey(start string) string {
	t := parseEventTime(start)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
