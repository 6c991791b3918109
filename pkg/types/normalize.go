package types

import "encoding/json"

// EmailMessage is the flat, stable shape exposed for Gmail messages.
// Derived from provider data on every fetch, never persisted.
type EmailMessage struct {
	Id          string   `json:"id"`
	Subject     string   `json:"subject"`
	Sender      string   `json:"sender"`
	SenderEmail string   `json:"senderEmail"`
	To          string   `json:"to"`
	Snippet     string   `json:"snippet"`
	Body        string   `json:"body"`
	Date        string   `json:"date"`
	IsRead      bool     `json:"isRead"`
	ThreadId    string   `json:"threadId"`
	LabelIds    []string `json:"labelIds"`
}

// EventAttendee is one attendee of a calendar event
type EventAttendee struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// EventOrganizer identifies the organizer of a calendar event
type EventOrganizer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Self  bool   `json:"self,omitempty"`
}

// CalendarEvent is the flat, stable shape exposed for calendar events
type CalendarEvent struct {
	Id               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Location         string          `json:"location,omitempty"`
	Start            string          `json:"start"`
	End              string          `json:"end"`
	IsAllDay         bool            `json:"isAllDay"`
	Status           string          `json:"status,omitempty"`
	HtmlLink         string          `json:"htmlLink,omitempty"`
	Attendees        []EventAttendee `json:"attendees"`
	Organizer        *EventOrganizer `json:"organizer"`
	CalendarId       string          `json:"calendarId,omitempty"`
	ColorId          string          `json:"colorId,omitempty"`
	RecurringEventId string          `json:"recurringEventId,omitempty"`
	Created          string          `json:"created,omitempty"`
	Updated          string          `json:"updated,omitempty"`
}

// CalendarSummary describes one calendar from the user's calendar list
type CalendarSummary struct {
	Id              string `json:"id"`
	Summary         string `json:"summary"`
	Primary         bool   `json:"primary,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// EventGroup is the ordered sequence of events on one date
type EventGroup struct {
	Date   string
	Events []CalendarEvent
}

// GroupedEvents maps ISO date strings (YYYY-MM-DD) to the events on that
// date. Grouping order follows the ascending sort of the underlying events,
// so it marshals as a JSON object with keys in insertion order rather than
// using a Go map.
type GroupedEvents []EventGroup

// MarshalJSON emits the groups as an object keyed by date, preserving order
func (g GroupedEvents) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, group := range g {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(group.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(group.Events)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
