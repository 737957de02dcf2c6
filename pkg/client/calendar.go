package client

import (
	"context"
	"fmt"
	"net/http"
)

// CalendarClient talks to the external calendar collaborator. Event creation
// is required by payment confirmation; deletion exists for the manual
// cancellation process and is not called by the service itself.
type CalendarClient interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (string, error)
	DeleteEvent(ctx context.Context, eventID string) (bool, error)
}

type CalendarEvent struct {
	Title       string `json:"title"`
	Start       string `json:"start"` // RFC3339
	End         string `json:"end"`   // RFC3339
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

type calendarClient struct {
	http *HttpClient
}

func NewCalendarClient(baseURL string) CalendarClient {
	return &calendarClient{
		http: NewHttpClient(baseURL),
	}
}

func (c *calendarClient) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	resp, err := c.http.POST(ctx, "/api/v1/events", event)
	if err != nil {
		return "", fmt.Errorf("calendar create event: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("calendar create event: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		EventID string `json:"event_id"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return "", fmt.Errorf("calendar create event: decode response: %w", err)
	}
	if body.EventID == "" {
		return "", fmt.Errorf("calendar create event: empty event id")
	}
	return body.EventID, nil
}

func (c *calendarClient) DeleteEvent(ctx context.Context, eventID string) (bool, error) {
	resp, err := c.http.DELETE(ctx, "/api/v1/events/"+eventID)
	if err != nil {
		return false, fmt.Errorf("calendar delete event: %w", err)
	}
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent, nil
}
